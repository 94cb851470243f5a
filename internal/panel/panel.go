// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panel implements the chat panel: the single owner of conversation
// state, input, overlay mode and request lifecycles.
//
// Every outbound action is two-phase. BeginSend, BeginUpload and
// BeginCapture apply the synchronous state transition (optimistic append,
// Pending lifecycle) and return a Job that performs the network call and
// applies its result. Front ends run the Job off their event loop; the
// SendMessage, UploadFile and CapturePhoto helpers run it inline.
//
// At most one request is in flight per panel. Failures are logged and,
// under PolicySurface, recorded as a user-visible error; optimistic
// messages are never rolled back.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/chatdock/internal/api"
	"github.com/jeranaias/chatdock/internal/logger"
	"github.com/jeranaias/chatdock/internal/media"
	"github.com/jeranaias/chatdock/internal/model"
)

// Rejections. These change no state beyond what each Begin method documents.
var (
	ErrBusy            = errors.New("another request is in progress")
	ErrNoFile          = errors.New("no file selected")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrClosed          = errors.New("panel closed")
)

// ErrNoImageURL is recorded when a capture upload returns no URL.
var ErrNoImageURL = errors.New("upload response carried no image URL")

// ErrorPolicy decides whether failures become visible to the user.
type ErrorPolicy int

const (
	// PolicySilent logs failures and shows nothing.
	PolicySilent ErrorPolicy = iota

	// PolicySurface also records the failure in State.LastError.
	PolicySurface
)

// Job performs a begun action's network call and applies the result.
type Job func(ctx context.Context)

// Options configure a Panel.
type Options struct {
	PDFOnly     bool
	ErrorPolicy ErrorPolicy
	Logger      *zap.Logger
}

// Panel is the chat panel state container. Safe for concurrent use; API
// calls never run under the lock.
type Panel struct {
	svc    api.Service
	opts   Options
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	conv         *model.Conversation
	input        string
	fileSelected bool
	mode         Mode
	requests     [numActions]RequestState
	lastError    string
	closed       bool
}

// New creates a panel backed by svc.
func New(svc api.Service, opts Options) *Panel {
	ctx, cancel := context.WithCancel(context.Background())
	return &Panel{
		svc:    svc,
		opts:   opts,
		log:    logger.OrNop(opts.Logger),
		ctx:    ctx,
		cancel: cancel,
		conv:   model.NewConversation(),
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Snapshot returns a consistent copy of the current state.
func (p *Panel) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Messages:     p.conv.Messages(),
		Input:        p.input,
		FileSelected: p.fileSelected,
		PDFOnly:      p.opts.PDFOnly,
		Mode:         p.mode,
		Send:         p.requests[ActionSend],
		Upload:       p.requests[ActionUpload],
		Capture:      p.requests[ActionCapture],
		LastError:    p.lastError,
	}
}

// Conversation returns the underlying append-only conversation.
func (p *Panel) Conversation() *model.Conversation {
	return p.conv
}

// AcceptList returns the file chooser accept string for this panel.
func (p *Panel) AcceptList() string {
	return media.AcceptList(p.opts.PDFOnly)
}

// PDFOnly reports whether the panel only accepts PDFs.
func (p *Panel) PDFOnly() bool {
	return p.opts.PDFOnly
}

// SetInput replaces the input buffer.
func (p *Panel) SetInput(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = text
}

// Close tears the panel down. In-flight jobs are canceled and any result
// arriving afterwards is discarded.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.cancel()
}

// =============================================================================
// MODE TRANSITIONS
// =============================================================================

// transition moves from one mode to another, reporting whether it applied.
func (p *Panel) transition(from, to Mode) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.mode != from {
		return false
	}
	p.mode = to
	return true
}

// OpenModal shows the upload-options modal.
func (p *Panel) OpenModal() bool { return p.transition(ModeIdle, ModeModalOpen) }

// CloseModal hides the upload-options modal.
func (p *Panel) CloseModal() bool { return p.transition(ModeModalOpen, ModeIdle) }

// UseCamera replaces the modal with the camera view.
func (p *Panel) UseCamera() bool { return p.transition(ModeModalOpen, ModeCameraOpen) }

// CloseCamera hides the camera view.
func (p *Panel) CloseCamera() bool { return p.transition(ModeCameraOpen, ModeIdle) }

// =============================================================================
// SEND
// =============================================================================

// BeginSend appends the input as a user message and returns the job that
// sends the full history. Blank input is a no-op: both return values are
// nil and nothing changes.
func (p *Panel) BeginSend() (Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	text := p.input
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if p.busyLocked() {
		return nil, ErrBusy
	}

	p.conv.Append(model.NewTextMessage(model.RoleUser, text))
	p.input = ""
	p.startLocked(ActionSend)
	history := p.conv.Messages()

	return func(ctx context.Context) {
		ctx, done := p.jobContext(ctx)
		defer done()

		resp, err := p.svc.SendMessages(ctx, history)
		p.finish(ActionSend, err, func() {
			if text, ok := resp.Text(); ok {
				p.conv.Append(model.NewTextMessage(model.RoleAssistant, text))
			}
		})
	}, nil
}

// SendMessage sends the current input and waits for the reply.
func (p *Panel) SendMessage(ctx context.Context) error {
	job, err := p.BeginSend()
	if err != nil || job == nil {
		return err
	}
	job(ctx)
	return nil
}

// =============================================================================
// UPLOAD
// =============================================================================

// BeginUpload marks a file as selected and returns the job that uploads it.
// fileSelected is set even when file is nil or the upload is rejected.
func (p *Panel) BeginUpload(file *media.File) (Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	p.fileSelected = true
	if file == nil {
		return nil, ErrNoFile
	}
	if p.busyLocked() {
		return nil, ErrBusy
	}
	if !media.Accepts(file, p.opts.PDFOnly) {
		p.log.Info("upload rejected",
			zap.String("file", file.Name),
			zap.String("content_type", file.ContentType))
		return nil, fmt.Errorf("%w: %s (accepts %s)", ErrUnsupportedFile, file.Name, media.AcceptList(p.opts.PDFOnly))
	}

	p.startLocked(ActionUpload)

	return func(ctx context.Context) {
		ctx, done := p.jobContext(ctx)
		defer done()

		resp, err := p.svc.UploadFile(ctx, file)
		p.finish(ActionUpload, err, func() {
			for _, u := range resp.URLs() {
				p.conv.Append(model.NewImageMessage(u))
			}
		})
	}, nil
}

// UploadFile uploads file and waits for the result.
func (p *Panel) UploadFile(ctx context.Context, file *media.File) error {
	job, err := p.BeginUpload(file)
	if err != nil {
		return err
	}
	job(ctx)
	return nil
}

// =============================================================================
// CAPTURE
// =============================================================================

// BeginCapture converts a captured still into captured-image.jpg and returns
// the job that uploads it. The camera view closes when the flow ends,
// whatever the outcome: on rejection or conversion failure it closes
// before BeginCapture returns, otherwise when the job completes.
func (p *Panel) BeginCapture(dataURL string) (Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if p.busyLocked() {
		p.closeCameraLocked()
		return nil, ErrBusy
	}

	file, err := media.FromDataURL(dataURL)
	if err != nil {
		p.startLocked(ActionCapture)
		p.failLocked(ActionCapture, err)
		p.closeCameraLocked()
		return nil, err
	}

	p.startLocked(ActionCapture)

	return func(ctx context.Context) {
		ctx, done := p.jobContext(ctx)
		defer done()

		resp, err := p.svc.UploadFile(ctx, file)
		if err == nil {
			if _, ok := resp.First(); !ok {
				err = ErrNoImageURL
			}
		}
		p.finish(ActionCapture, err, func() {
			u, _ := resp.First()
			p.conv.Append(model.NewImageMessage(u))
		})
	}, nil
}

// CapturePhoto uploads a captured still and waits for the result.
func (p *Panel) CapturePhoto(ctx context.Context, dataURL string) error {
	job, err := p.BeginCapture(dataURL)
	if err != nil {
		return err
	}
	job(ctx)
	return nil
}

// =============================================================================
// LIFECYCLE HELPERS
// =============================================================================

// busyLocked reports whether any request is pending. Caller holds p.mu.
func (p *Panel) busyLocked() bool {
	for _, s := range p.requests {
		if s == RequestPending {
			return true
		}
	}
	return false
}

// startLocked marks action Pending and clears the previous error.
func (p *Panel) startLocked(a Action) {
	p.requests[a] = RequestPending
	p.lastError = ""
	p.log.Debug("request started", zap.Stringer("action", a))
}

// failLocked records a failure and applies the error policy.
func (p *Panel) failLocked(a Action, err error) {
	p.requests[a] = RequestFailed
	p.log.Warn("request failed", zap.Stringer("action", a), zap.Error(err))
	if p.opts.ErrorPolicy == PolicySurface {
		p.lastError = fmt.Sprintf("%s failed: %v", a, err)
	}
}

func (p *Panel) closeCameraLocked() {
	if p.mode == ModeCameraOpen {
		p.mode = ModeIdle
	}
}

// finish applies a job's outcome. apply runs under the lock and only on
// success. Results arriving after Close are dropped.
func (p *Panel) finish(a Action, err error, apply func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.log.Debug("discarding result after close", zap.Stringer("action", a))
		return
	}
	if a == ActionCapture {
		p.closeCameraLocked()
	}
	if err != nil {
		p.failLocked(a, err)
		return
	}
	apply()
	p.requests[a] = RequestSucceeded
	p.log.Debug("request succeeded", zap.Stringer("action", a))
}

// jobContext derives a context canceled by either ctx or Close.
func (p *Panel) jobContext(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(p.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
