// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jeranaias/chatdock/internal/export"
	"github.com/jeranaias/chatdock/internal/media"
	"github.com/jeranaias/chatdock/internal/model"
	"github.com/jeranaias/chatdock/internal/panel"
	"github.com/jeranaias/chatdock/internal/render"
)

// ============================================================================
// STATE VIEW
// ============================================================================

// messageView is a message as sent to the browser. HTML is the escaped
// rendering of the content.
type messageView struct {
	ID        string              `json:"id"`
	Role      string              `json:"role"`
	Content   []model.ContentPart `json:"content"`
	Timestamp time.Time           `json:"timestamp"`
	HTML      template.HTML       `json:"html"`
}

// stateView is the JSON form of a panel snapshot.
type stateView struct {
	Messages         []messageView `json:"messages"`
	Input            string        `json:"input"`
	FileSelected     bool          `json:"file_selected"`
	PDFOnly          bool          `json:"pdf_only"`
	ShowUploadPrompt bool          `json:"show_upload_prompt"`
	Accept           string        `json:"accept"`
	Mode             string        `json:"mode"`
	ModalOpen        bool          `json:"modal_open"`
	CameraOpen       bool          `json:"camera_open"`
	Loading          bool          `json:"loading"`
	Send             string        `json:"send"`
	Upload           string        `json:"upload"`
	Capture          string        `json:"capture"`
	LastError        string        `json:"last_error,omitempty"`
}

func newStateView(p *panel.Panel) stateView {
	st := p.Snapshot()
	msgs := make([]messageView, len(st.Messages))
	for i, m := range st.Messages {
		msgs[i] = messageView{
			ID:        m.ID,
			Role:      m.Role.String(),
			Content:   m.Content,
			Timestamp: m.Timestamp,
			// render.HTML escapes all text and drops unsafe image URLs.
			HTML: template.HTML(render.HTML(m.Part())),
		}
	}
	return stateView{
		Messages:         msgs,
		Input:            st.Input,
		FileSelected:     st.FileSelected,
		PDFOnly:          st.PDFOnly,
		ShowUploadPrompt: st.ShowUploadPrompt(),
		Accept:           p.AcceptList(),
		Mode:             st.Mode.String(),
		ModalOpen:        st.ModalOpen(),
		CameraOpen:       st.CameraOpen(),
		Loading:          st.Loading(),
		Send:             st.Send.String(),
		Upload:           st.Upload.String(),
		Capture:          st.Capture.String(),
		LastError:        st.LastError,
	}
}

// ============================================================================
// READ HANDLERS
// ============================================================================

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(healthResponse{Status: "ok", Sessions: s.sessions.len()})
}

func (s *Server) handleAsset(body, contentType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, contentType)
		return c.SendString(body)
	}
}

type pageData struct {
	stateView
	Refresh int
}

func (s *Server) handlePage(c *fiber.Ctx) error {
	view := newStateView(sessionFrom(c).panel)
	data := pageData{stateView: view}
	if view.Loading {
		data.Refresh = pageRefresh
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(newStateView(sessionFrom(c).panel))
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	conv := sessionFrom(c).panel.Conversation()
	exp, err := export.ForFormat(c.Query("format", "html"), s.opts.Export)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	data, err := exp.Export(conv)
	if errors.Is(err, export.ErrEmptyConversation) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}

	c.Attachment(export.Filename(conv, exp, time.Now()))
	// Attachment guesses the type from the extension; the exporter knows.
	c.Set(fiber.HeaderContentType, exp.MimeType())
	return c.Send(data)
}

// ============================================================================
// ACTION HANDLERS
// ============================================================================

func (s *Server) handleSend(c *fiber.Ctx) error {
	p := sessionFrom(c).panel
	p.SetInput(c.FormValue("message"))
	job, err := p.BeginSend()
	if err != nil {
		return s.reject(c, err)
	}
	if job != nil {
		s.run(job)
	}
	return s.respond(c)
}

func (s *Server) handleUpload(c *fiber.Ctx) error {
	p := sessionFrom(c).panel

	var file *media.File
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > media.MaxFileSize {
			return s.reject(c, media.ErrTooLarge)
		}
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open upload: %w", err)
		}
		data, err := io.ReadAll(io.LimitReader(f, media.MaxFileSize+1))
		f.Close()
		if err != nil {
			return fmt.Errorf("read upload: %w", err)
		}
		if len(data) > media.MaxFileSize {
			return s.reject(c, media.ErrTooLarge)
		}
		file = media.NewFile(fh.Filename, data)
	}

	job, err := p.BeginUpload(file)
	if err != nil {
		return s.reject(c, err)
	}
	s.run(job)
	return s.respond(c)
}

func (s *Server) handleCapture(c *fiber.Ctx) error {
	p := sessionFrom(c).panel
	job, err := p.BeginCapture(c.FormValue("image"))
	if err != nil {
		return s.reject(c, err)
	}
	s.run(job)
	return s.respond(c)
}

// handleMode applies a mode transition. Transitions that do not apply are
// ignored; the client sees the resulting state either way.
func (s *Server) handleMode(transition func(*panel.Panel) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		transition(sessionFrom(c).panel)
		return s.respond(c)
	}
}

// ============================================================================
// RESPONSES
// ============================================================================

// respond redirects browsers back to the page and gives JSON clients the
// new state.
func (s *Server) respond(c *fiber.Ctx) error {
	if wantsJSON(c) {
		return c.JSON(newStateView(sessionFrom(c).panel))
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// reject maps a refused action to a status code. Browsers are sent back to
// the page, which shows the panel state.
func (s *Server) reject(c *fiber.Ctx, err error) error {
	code := fiber.StatusBadRequest
	switch {
	case errors.Is(err, panel.ErrBusy):
		code = fiber.StatusConflict
	case errors.Is(err, panel.ErrUnsupportedFile):
		code = fiber.StatusUnsupportedMediaType
	case errors.Is(err, media.ErrTooLarge):
		code = fiber.StatusRequestEntityTooLarge
	case errors.Is(err, panel.ErrClosed):
		code = fiber.StatusGone
	}
	s.log.Info("action rejected",
		zap.String("session", sessionFrom(c).id),
		zap.String("path", c.Path()),
		zap.Int("status", code),
		zap.Error(err),
	)
	if wantsJSON(c) {
		return fiber.NewError(code, err.Error())
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}
