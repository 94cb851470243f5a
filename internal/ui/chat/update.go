// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/chatdock/internal/camera"
	"github.com/jeranaias/chatdock/internal/export"
	"github.com/jeranaias/chatdock/internal/media"
	"github.com/jeranaias/chatdock/internal/model"
	"github.com/jeranaias/chatdock/internal/panel"
	"github.com/jeranaias/chatdock/internal/render"
	"github.com/jeranaias/chatdock/internal/ui/styles"
	"github.com/jeranaias/chatdock/internal/util"
)

// captureTimeout bounds waiting for the first frame of a live feed.
const captureTimeout = 5 * time.Second

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case JobDoneMsg:
		m.refresh()
		m.syncCamera()
		if m.state.LastError != "" {
			m.setNotice(styles.StatusError, m.state.LastError)
		}
		return m, nil

	case CameraMountedMsg:
		if msg.Err != nil {
			m.log.Warn("camera start failed", zap.Error(msg.Err))
			m.panel.CloseCamera()
			m.refresh()
			m.setNotice(styles.StatusError, "camera: "+msg.Err.Error())
		}
		return m, nil

	case PhotoCapturedMsg:
		return m.handlePhoto(msg)

	case CaptureFailedMsg:
		m.capturing = false
		m.log.Warn("capture failed", zap.Error(msg.Err))
		m.panel.CloseCamera()
		m.refresh()
		m.syncCamera()
		m.setNotice(styles.StatusError, "capture failed: "+msg.Err.Error())
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.log.Warn("export failed", zap.Error(msg.Err))
			m.setNotice(styles.StatusError, "export failed: "+msg.Err.Error())
		} else {
			m.log.Info("conversation exported", zap.String("path", msg.Path))
			m.setNotice(styles.StatusSuccess, "exported to "+msg.Path)
		}
		return m, nil

	case CopyDoneMsg:
		if msg.Err != nil {
			m.setNotice(styles.StatusError, "copy failed: "+msg.Err.Error())
		} else {
			m.setNotice(styles.StatusSuccess, "reply copied")
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	default:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		if m.choosing {
			m.path, cmd = m.path.Update(msg)
		} else {
			m.input, cmd = m.input.Update(msg)
		}
		cmds = append(cmds, cmd)
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	m.viewport.Width = msg.Width
	m.viewport.Height = m.viewportHeight(inputBoxHeight)
	m.input.Width = msg.Width - 6
	m.path.Width = msg.Width - 12
	m.refresh()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch {
	case m.choosing:
		return m.handlePathKey(msg)
	case m.state.CameraOpen():
		return m.handleCameraKey(msg)
	case m.state.ModalOpen():
		return m.handleModalKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Send):
		return m.submitInput()
	case key.Matches(msg, m.keys.Upload):
		return m.openUpload()
	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(m.panel.Conversation(), m.exportFormat, m.exportOpts)
	case key.Matches(msg, m.keys.Copy):
		return m.copyLastReply()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Close):
		m.notice = ""
		return m, nil
	}

	// Input is disabled while a request is pending.
	if m.state.Loading() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ChooseFile):
		m.panel.CloseModal()
		m.refresh()
		return m.startChoosing()
	case key.Matches(msg, m.keys.UseCamera):
		if m.camera == nil {
			m.setNotice(styles.StatusInfo, "no camera configured")
			return m, nil
		}
		if !m.panel.UseCamera() {
			return m, nil
		}
		m.refresh()
		return m, mountCmd(m.camera)
	case key.Matches(msg, m.keys.Close):
		m.panel.CloseModal()
		m.refresh()
	}
	return m, nil
}

func (m Model) handleCameraKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Capture):
		if m.capturing || m.state.Loading() {
			return m, nil
		}
		m.capturing = true
		m.setNotice(styles.StatusPending, "capturing...")
		return m, captureCmd(m.camera, m.shots)
	case key.Matches(msg, m.keys.Close):
		m.panel.CloseCamera()
		m.refresh()
		m.syncCamera()
	}
	return m, nil
}

func (m Model) handlePathKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		return m.submitPath()
	case key.Matches(msg, m.keys.Close):
		m.stopChoosing()
		return m, textinput.Blink
	}
	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m Model) handlePhoto(msg PhotoCapturedMsg) (tea.Model, tea.Cmd) {
	m.capturing = false
	m.notice = ""
	// The view was closed while the frame was in flight.
	if !m.state.CameraOpen() {
		return m, nil
	}
	job, err := m.panel.BeginCapture(msg.DataURL)
	m.refresh()
	m.syncCamera()
	if err != nil {
		return m.reject(err)
	}
	return m, m.startJob(job, panel.ActionCapture)
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	if m.state.Loading() {
		return m, nil
	}
	m.panel.SetInput(m.input.Value())
	job, err := m.panel.BeginSend()
	if err != nil {
		return m.reject(err)
	}
	if job == nil {
		return m, nil
	}
	m.input.Reset()
	m.notice = ""
	m.refresh()
	return m, m.startJob(job, panel.ActionSend)
}

// openUpload opens the upload options, or the path prompt directly when
// only PDFs are accepted.
func (m Model) openUpload() (tea.Model, tea.Cmd) {
	if m.panel.PDFOnly() {
		return m.startChoosing()
	}
	m.panel.OpenModal()
	m.refresh()
	return m, nil
}

func (m Model) startChoosing() (tea.Model, tea.Cmd) {
	m.choosing = true
	m.input.Blur()
	m.path.Reset()
	m.path.Focus()
	return m, textinput.Blink
}

func (m *Model) stopChoosing() {
	m.choosing = false
	m.path.Blur()
	m.path.Reset()
	m.input.Focus()
}

func (m Model) submitPath() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.path.Value())
	m.stopChoosing()

	var file *media.File
	if raw != "" {
		f, err := media.Open(util.ExpandHome(raw))
		if err != nil {
			m.log.Warn("open file failed", zap.String("path", raw), zap.Error(err))
			m.setNotice(styles.StatusError, err.Error())
			return m, nil
		}
		file = f
	}

	job, err := m.panel.BeginUpload(file)
	m.refresh()
	if err != nil {
		return m.reject(err)
	}
	m.notice = ""
	return m, m.startJob(job, panel.ActionUpload)
}

func (m Model) copyLastReply() (tea.Model, tea.Cmd) {
	msg, ok := m.panel.Conversation().Last(model.RoleAssistant)
	if !ok {
		m.setNotice(styles.StatusInfo, "no reply to copy")
		return m, nil
	}
	text := render.Plain(msg.Part())
	write := m.copyText
	return m, func() tea.Msg {
		return CopyDoneMsg{Err: write(text)}
	}
}

// reject shows why the panel refused an action.
func (m Model) reject(err error) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(err, panel.ErrBusy):
		m.setNotice(styles.StatusPending, "please wait for the current request")
	case errors.Is(err, panel.ErrNoFile):
		m.setNotice(styles.StatusInfo, "no file selected")
	default:
		m.setNotice(styles.StatusError, err.Error())
	}
	return m, nil
}

// startJob runs job off the event loop and starts the loading spinner.
func (m Model) startJob(job panel.Job, action panel.Action) tea.Cmd {
	return tea.Batch(runJob(job, action), m.spinner.Tick)
}

// =============================================================================
// COMMANDS
// =============================================================================

func runJob(job panel.Job, action panel.Action) tea.Cmd {
	return func() tea.Msg {
		job(context.Background())
		return JobDoneMsg{Action: action}
	}
}

func mountCmd(ctrl *camera.Control) tea.Cmd {
	return func() tea.Msg {
		return CameraMountedMsg{Err: ctrl.Mount(context.Background())}
	}
}

func captureCmd(ctrl *camera.Control, shots <-chan string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
		defer cancel()

		if err := ctrl.Capture(ctx); err != nil {
			return CaptureFailedMsg{Err: err}
		}
		select {
		case dataURL := <-shots:
			return PhotoCapturedMsg{DataURL: dataURL}
		default:
			return CaptureFailedMsg{Err: camera.ErrNoFrame}
		}
	}
}

func exportCmd(conv *model.Conversation, format string, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		exp, err := export.ForFormat(format, opts)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		path, err := export.ToFile(conv, exp, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}
