// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/chatdock/internal/export"
	"github.com/jeranaias/chatdock/internal/logger"
	"github.com/jeranaias/chatdock/internal/media"
	"github.com/jeranaias/chatdock/internal/panel"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultListenAddr is the default listen address.
	DefaultListenAddr = "127.0.0.1:8080"

	// DefaultSessionTTL is how long an idle browser session is kept.
	DefaultSessionTTL = 30 * time.Minute

	// DefaultMaxSessions bounds the live sessions.
	DefaultMaxSessions = 500

	// sessionCookie names the cookie carrying the session ID.
	sessionCookie = "chatdock_session"

	// bodyLimit leaves room for multipart framing around the largest upload.
	bodyLimit = media.MaxFileSize + 1<<20

	// pageRefresh is the reload interval of the page while loading.
	pageRefresh = 1
)

// Options configure a Server.
type Options struct {
	ListenAddr string
	SessionTTL time.Duration

	// RateLimit is the sustained POST rate per session; zero disables
	// limiting.
	RateLimit float64
	RateBurst int

	// MaxSessions caps the live sessions. A new session beyond the cap
	// replaces the one idle longest.
	MaxSessions int

	// Export carries the export settings; only Theme and
	// IncludeTimestamps apply to downloads.
	Export *export.Options

	// NewPanel creates the panel for a new session.
	NewPanel func() *panel.Panel

	Logger *zap.Logger
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the browser front end.
type Server struct {
	opts     Options
	log      *zap.Logger
	app      *fiber.App
	sessions *sessionStore
	page     *template.Template

	// run executes a begun panel job; in the background by default.
	run func(job panel.Job)

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server. opts.NewPanel is required.
func New(opts Options) *Server {
	if opts.ListenAddr == "" {
		opts.ListenAddr = DefaultListenAddr
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.MaxSessions < 1 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Export == nil {
		opts.Export = export.DefaultOptions()
	}
	log := logger.OrNop(opts.Logger)

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	if opts.RateBurst < 1 {
		opts.RateBurst = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:     opts,
		log:      log,
		sessions: newSessionStore(opts.NewPanel, opts.SessionTTL, opts.MaxSessions, limit, opts.RateBurst, log),
		page:     template.Must(template.New("page").Parse(pageTemplate)),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.run = func(job panel.Job) { go job(s.ctx) }

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		Immutable:             true, // form values outlive the handler in the panel
		ErrorHandler:          s.handleError,
	})
	s.setupRoutes()
	return s
}

// App exposes the fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(securityHeaders)
	s.app.Use(s.logRequests)

	// No session needed.
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/assets/app.css", s.handleAsset(appCSS, "text/css"))
	s.app.Get("/assets/camera.js", s.handleAsset(cameraJS, "application/javascript"))

	s.app.Use(s.withSession)
	s.app.Use(s.rateLimit)

	s.app.Get("/", s.handlePage)
	s.app.Get("/state", s.handleState)
	s.app.Get("/export", s.handleExport)

	s.app.Post("/send", s.handleSend)
	s.app.Post("/upload", s.handleUpload)
	s.app.Post("/capture", s.handleCapture)
	s.app.Post("/modal/open", s.handleMode((*panel.Panel).OpenModal))
	s.app.Post("/modal/close", s.handleMode((*panel.Panel).CloseModal))
	s.app.Post("/camera/open", s.handleMode((*panel.Panel).UseCamera))
	s.app.Post("/camera/close", s.handleMode((*panel.Panel).CloseCamera))
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// Run serves until the listener fails or Shutdown is called. Idle sessions
// are swept in the background.
func (s *Server) Run() error {
	s.log.Info("starting web server",
		zap.String("listen", s.opts.ListenAddr),
		zap.Duration("session_ttl", s.opts.SessionTTL),
	)
	go s.sweepLoop()
	return s.app.Listen(s.opts.ListenAddr)
}

// Shutdown stops accepting requests, cancels running jobs and closes every
// session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	err := s.app.ShutdownWithContext(ctx)
	s.sessions.closeAll()
	return err
}

func (s *Server) sweepLoop() {
	interval := s.opts.SessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.sweep(); n > 0 {
				s.log.Info("expired idle sessions", zap.Int("count", n))
			}
		}
	}
}
