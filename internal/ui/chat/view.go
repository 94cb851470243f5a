// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdock/internal/model"
	"github.com/jeranaias/chatdock/internal/render"
	"github.com/jeranaias/chatdock/internal/ui/styles"
)

// Fixed layout rows: header with its border, one notice line, status bar.
const (
	headerHeight   = 2
	noticeHeight   = 1
	statusHeight   = 1
	inputBoxHeight = 3
)

const (
	appTitle      = "chatdock"
	uploadPDFText = "Upload PDF file here (Ctrl+O)"
	loadingText   = "Thinking..."
)

// viewportHeight returns the rows left for the transcript given the height
// of the bottom area.
func (m Model) viewportHeight(bottom int) int {
	h := m.height - headerHeight - noticeHeight - statusHeight - bottom
	if h < 1 {
		return 1
	}
	return h
}

// =============================================================================
// MAIN LAYOUT
// =============================================================================

func (m Model) renderChat() string {
	bottom := m.renderBottom()

	vp := m.viewport
	if m.height > 0 {
		vp.Height = m.viewportHeight(lipgloss.Height(bottom))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		vp.View(),
		bottom,
		m.renderNotice(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render(appTitle)
	if m.subtitle != "" {
		title += "  " + m.theme.HeaderSubtitle.Render(m.subtitle)
	}
	style := m.theme.Header
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(title)
}

// renderBottom returns the active overlay, or the input box.
func (m Model) renderBottom() string {
	switch {
	case m.choosing:
		return m.renderPathPrompt()
	case m.state.CameraOpen():
		return m.renderCamera()
	case m.state.ModalOpen():
		return m.renderModal()
	}

	style := m.theme.InputContainer
	if m.state.Loading() {
		style = m.theme.InputDisabled
	}
	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	return style.Render(m.input.View())
}

func (m Model) renderNotice() string {
	switch {
	case m.notice != "":
		return styles.Status(m.noticeKind, m.notice)
	case m.state.Loading():
		return styles.Status(styles.StatusPending, "waiting for the assistant")
	}
	return ""
}

func (m Model) renderStatusBar() string {
	bindings := m.keys.ShortHelp()
	switch {
	case m.choosing:
		bindings = []key.Binding{m.keys.Send, m.keys.Close}
	case m.state.CameraOpen():
		bindings = m.keys.CameraHelp()
	case m.state.ModalOpen():
		bindings = m.keys.ModalHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, m.theme.Shortcut(h.Key, h.Desc))
	}
	return m.theme.StatusBar.Render(strings.Join(hints, "  "))
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) renderModal() string {
	options := []string{
		m.theme.ModalOption.Render(m.theme.Shortcut("f", "Upload File")),
	}
	if m.camera != nil {
		options = append(options, m.theme.ModalOption.Render(m.theme.Shortcut("c", "Use Camera")))
	}
	options = append(options, m.theme.ModalOption.Render(m.theme.Shortcut("esc", "Close")))

	body := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{m.theme.ModalTitle.Render("Select an Option")}, options...)...)
	return m.center(m.theme.ModalBox.Render(body))
}

func (m Model) renderCamera() string {
	status := "Preview running. Press Enter or Space to capture."
	switch {
	case m.capturing:
		status = "Capturing..."
	case m.state.Loading():
		status = "Uploading photo..."
	case m.camera != nil && !m.camera.Mounted():
		status = "Starting camera..."
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.CameraTitle.Render("Camera"),
		status,
	)
	return m.center(m.theme.CameraBox.Render(body))
}

func (m Model) renderPathPrompt() string {
	title := "Upload a file (" + m.panel.AcceptList() + ")"
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.ModalTitle.Render(title),
		m.path.View(),
	)
	return m.center(m.theme.ModalBox.Render(body))
}

func (m Model) center(s string) string {
	if m.width <= 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, s)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderMessages renders the transcript shown in the viewport.
func (m Model) renderMessages() string {
	var blocks []string

	if m.state.ShowUploadPrompt() {
		blocks = append(blocks, m.center(m.theme.UploadPrompt.Render(uploadPDFText)))
	}
	for _, msg := range m.state.Messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	if m.state.Loading() {
		row := m.spinner.View() + " " + m.theme.LoadingText.Render(loadingText)
		blocks = append(blocks, m.theme.AssistantBubble.Render(row))
	}
	return strings.Join(blocks, "\n")
}

func (m Model) renderMessage(msg model.Message) string {
	width := m.theme.BubbleWidth()
	label := m.theme.RoleLabel.Render(msg.Role.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	body := render.Terminal(msg.Part(), width)
	// Bubble width covers content plus horizontal padding; longer text wraps.
	w := lipgloss.Width(body) + 2
	if w > width {
		w = width
	}
	if msg.Role == model.RoleUser {
		block := lipgloss.JoinVertical(lipgloss.Right, label, m.theme.UserBubble.Width(w).Render(body))
		if m.width > 0 {
			return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
		}
		return block
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, m.theme.AssistantBubble.Width(w).Render(body))
}
