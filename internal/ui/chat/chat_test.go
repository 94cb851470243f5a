// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdock/internal/api"
	"github.com/jeranaias/chatdock/internal/export"
	"github.com/jeranaias/chatdock/internal/media"
	"github.com/jeranaias/chatdock/internal/model"
	"github.com/jeranaias/chatdock/internal/panel"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type stubService struct {
	mu      sync.Mutex
	reply   string
	urls    []string
	uploads []*media.File
}

func (s *stubService) SendMessages(_ context.Context, _ []model.Message) (*api.SendResponse, error) {
	return &api.SendResponse{Messages: []api.ResponseMessage{{
		Role:    "assistant",
		Content: []api.ResponsePart{{Type: "text", Text: s.reply}},
	}}}, nil
}

func (s *stubService) UploadFile(_ context.Context, f *media.File) (*api.UploadResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, f)
	return &api.UploadResponse{ImageURLs: s.urls}, nil
}

type stubCamera struct {
	mu      sync.Mutex
	started bool
	frame   string
}

func (c *stubCamera) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
	return nil
}

func (c *stubCamera) Snapshot(context.Context) (string, error) { return c.frame, nil }

func (c *stubCamera) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
	return nil
}

func (c *stubCamera) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

func jpegFrame(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return media.EncodeDataURL("image/jpeg", buf.Bytes())
}

// =============================================================================
// HELPERS
// =============================================================================

func newModel(t *testing.T, svc *stubService, pdfOnly bool, cam *stubCamera) Model {
	t.Helper()
	p := panel.New(svc, panel.Options{PDFOnly: pdfOnly})
	t.Cleanup(p.Close)

	opts := Options{Panel: p}
	if cam != nil {
		opts.Camera = cam
	}
	m := quiet(New(opts))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

// quiet stops cursor blinking so key presses return no timer commands.
func quiet(m Model) Model {
	m.input.Cursor.SetMode(cursor.CursorStatic)
	m.path.Cursor.SetMode(cursor.CursorStatic)
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends msg and drains the resulting commands, feeding their
// messages back in. Spinner ticks are dropped so nothing sleeps.
func press(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	m = next.(Model)
	for _, out := range drain(cmd) {
		m = press(m, out)
	}
	return m
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
		return out
	case spinner.TickMsg, nil:
		return nil
	case tea.QuitMsg:
		return nil
	}
	if isBlink(msg) {
		return nil
	}
	return []tea.Msg{msg}
}

// isBlink filters cursor blink messages, which re-arm on a timer.
func isBlink(msg tea.Msg) bool {
	switch msg.(type) {
	case JobDoneMsg, CameraMountedMsg, PhotoCapturedMsg, CaptureFailedMsg, ExportDoneMsg, CopyDoneMsg:
		return false
	}
	return true
}

// =============================================================================
// SEND
// =============================================================================

func TestSendAppendsUserAndAssistant(t *testing.T) {
	svc := &stubService{reply: "**hello** there"}
	m := newModel(t, svc, false, nil)

	m = press(m, keyRunes("hi"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	state := m.State()
	require.Len(t, state.Messages, 2)
	assert.Equal(t, model.RoleUser, state.Messages[0].Role)
	assert.Equal(t, "hi", state.Messages[0].Text())
	assert.Equal(t, model.RoleAssistant, state.Messages[1].Role)
	assert.Equal(t, "**hello** there", state.Messages[1].Text())
	assert.False(t, state.Loading())
	assert.Empty(t, m.input.Value())

	view := m.View()
	assert.Contains(t, view, "hello")
	assert.NotContains(t, view, "**")
}

func TestBlankInputDoesNothing(t *testing.T) {
	m := newModel(t, &stubService{reply: "x"}, false, nil)
	m = press(m, keyRunes("   "))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.State().Messages)
}

func TestLoadingRowWhileSendPending(t *testing.T) {
	m := newModel(t, &stubService{reply: "done"}, false, nil)
	m = press(m, keyRunes("question"))

	// Begin the send without running its job.
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.State().Loading())
	assert.Contains(t, m.View(), loadingText)

	// Typing is ignored while the request is in flight.
	m = press(m, keyRunes("more"))
	assert.Empty(t, m.input.Value())
}

// =============================================================================
// UPLOAD
// =============================================================================

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n%test\n"), 0o600))
	return path
}

func TestModalUploadFile(t *testing.T) {
	svc := &stubService{urls: []string{"https://cdn/a.png", "https://cdn/b.png"}}
	m := newModel(t, svc, false, nil)

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.True(t, m.State().ModalOpen())
	assert.Contains(t, m.View(), "Select an Option")

	m = press(m, keyRunes("f"))
	assert.False(t, m.State().ModalOpen())
	assert.True(t, m.choosing)

	m = press(m, keyRunes(writePDF(t)))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	state := m.State()
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "https://cdn/a.png", state.Messages[0].Part().URL())
	assert.Equal(t, "https://cdn/b.png", state.Messages[1].Part().URL())
	require.Len(t, svc.uploads, 1)
	assert.Equal(t, "application/pdf", svc.uploads[0].ContentType)
}

func TestModalEscCloses(t *testing.T) {
	m := newModel(t, &stubService{}, false, nil)
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, panel.ModeIdle, m.State().Mode)
}

func TestPDFModePromptsDirectly(t *testing.T) {
	svc := &stubService{urls: []string{"https://cdn/page1.png"}}
	m := newModel(t, svc, true, nil)
	assert.Contains(t, m.View(), uploadPDFText)

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.False(t, m.State().ModalOpen())
	require.True(t, m.choosing)
	assert.Contains(t, m.View(), ".pdf")

	m = press(m, keyRunes(writePDF(t)))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, m.State().FileSelected)
	assert.False(t, m.State().ShowUploadPrompt())
	assert.NotContains(t, m.View(), uploadPDFText)
	assert.Len(t, m.State().Messages, 1)
}

func TestUnsupportedFileShowsNotice(t *testing.T) {
	svc := &stubService{}
	m := newModel(t, svc, true, nil)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m = press(m, keyRunes(path))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, svc.uploads)
	assert.Contains(t, m.notice, "unsupported file type")
}

// =============================================================================
// CAMERA
// =============================================================================

func TestCameraCaptureUploadsAndCloses(t *testing.T) {
	svc := &stubService{urls: []string{"https://cdn/shot.jpg"}}
	cam := &stubCamera{frame: jpegFrame(t)}
	m := newModel(t, svc, false, cam)

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m = press(m, keyRunes("c"))
	require.True(t, m.State().CameraOpen())
	assert.True(t, cam.running())
	assert.Contains(t, m.View(), "Camera")

	m = press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	state := m.State()
	assert.Equal(t, panel.ModeIdle, state.Mode)
	assert.False(t, cam.running())
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "https://cdn/shot.jpg", state.Messages[0].Part().URL())
	require.Len(t, svc.uploads, 1)
	assert.Equal(t, media.CapturedName, svc.uploads[0].Name)
}

func TestCameraEscStopsPreview(t *testing.T) {
	cam := &stubCamera{frame: jpegFrame(t)}
	m := newModel(t, &stubService{}, false, cam)

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m = press(m, keyRunes("c"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, panel.ModeIdle, m.State().Mode)
	assert.False(t, cam.running())
}

func TestPhotoAfterCameraClosedIsDropped(t *testing.T) {
	svc := &stubService{urls: []string{"https://cdn/late.jpg"}}
	cam := &stubCamera{frame: jpegFrame(t)}
	m := newModel(t, svc, false, cam)

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m = press(m, keyRunes("c"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, panel.ModeIdle, m.State().Mode)

	next, cmd := m.Update(PhotoCapturedMsg{DataURL: cam.frame})
	m = next.(Model)

	assert.Nil(t, cmd)
	assert.Empty(t, svc.uploads)
	assert.Empty(t, m.State().Messages)
	assert.Equal(t, panel.RequestIdle, m.State().Capture)
}

func TestCameraOptionHiddenWithoutSource(t *testing.T) {
	m := newModel(t, &stubService{}, false, nil)
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.NotContains(t, m.View(), "Use Camera")

	m = press(m, keyRunes("c"))
	assert.True(t, m.State().ModalOpen())
	assert.Equal(t, "no camera configured", m.notice)
}

// =============================================================================
// COPY AND EXPORT
// =============================================================================

func TestCopyLastReply(t *testing.T) {
	svc := &stubService{reply: "*copied* text"}
	p := panel.New(svc, panel.Options{})
	t.Cleanup(p.Close)

	var clip string
	m := quiet(New(Options{Panel: p, Clipboard: func(s string) error {
		clip = s
		return nil
	}}))

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "no reply to copy", m.notice)

	m = press(m, keyRunes("hi"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlY})

	assert.Equal(t, "copied text", clip)
	assert.Equal(t, "reply copied", m.notice)
}

func TestExportWritesTranscript(t *testing.T) {
	dir := t.TempDir()
	p := panel.New(&stubService{reply: "answer"}, panel.Options{})
	t.Cleanup(p.Close)

	opts := export.DefaultOptions()
	opts.OutputDir = dir
	m := quiet(New(Options{Panel: p, Export: opts, ExportFormat: "md"}))

	m = press(m, keyRunes("question"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})

	require.True(t, strings.HasPrefix(m.notice, "exported to "), m.notice)
	path := strings.TrimPrefix(m.notice, "exported to ")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "answer")
}

func TestExportEmptyConversationFails(t *testing.T) {
	opts := export.DefaultOptions()
	opts.OutputDir = t.TempDir()
	p := panel.New(&stubService{}, panel.Options{})
	t.Cleanup(p.Close)

	m := quiet(New(Options{Panel: p, Export: opts}))
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Contains(t, m.notice, "export failed")
}
