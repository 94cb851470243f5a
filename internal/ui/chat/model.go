// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/chatdock/internal/camera"
	"github.com/jeranaias/chatdock/internal/export"
	"github.com/jeranaias/chatdock/internal/logger"
	"github.com/jeranaias/chatdock/internal/panel"
	"github.com/jeranaias/chatdock/internal/ui/styles"
)

const (
	inputPlaceholder = "Hi! Ask me anything..."
	pathPlaceholder  = "Path to a file"
	maxInputLength   = 4000
)

// Options configure the chat screen.
type Options struct {
	Panel *panel.Panel
	Theme *styles.Theme

	// Camera is the frame source behind "use camera". Nil hides the option.
	Camera camera.FrameSource

	Export       *export.Options
	ExportFormat string

	// Subtitle is shown next to the title, typically the API address.
	Subtitle string

	Logger *zap.Logger

	// Clipboard writes text to the system clipboard. Defaults to
	// clipboard.WriteAll.
	Clipboard func(string) error
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	panel *panel.Panel
	theme *styles.Theme
	keys  KeyMap
	log   *zap.Logger

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	path     textinput.Model
	spinner  spinner.Model

	// Camera preview; nil when no source is configured
	camera    *camera.Control
	shots     chan string
	capturing bool

	exportOpts   *export.Options
	exportFormat string
	copyText     func(string) error
	subtitle     string

	// Last panel snapshot
	state panel.State

	// File path prompt visible
	choosing bool

	notice     string
	noticeKind styles.StatusKind

	width  int
	height int
}

// New creates the chat screen for opts.Panel.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	log := logger.OrNop(opts.Logger)

	input := textinput.New()
	input.Placeholder = inputPlaceholder
	input.CharLimit = maxInputLength
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.Focus()

	path := textinput.New()
	path.Placeholder = pathPlaceholder
	path.Prompt = "file: "
	path.PromptStyle = theme.InputPrompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := Model{
		panel:        opts.Panel,
		theme:        theme,
		keys:         DefaultKeyMap(),
		log:          log,
		viewport:     viewport.New(80, 20),
		input:        input,
		path:         path,
		spinner:      sp,
		exportOpts:   opts.Export,
		exportFormat: opts.ExportFormat,
		copyText:     opts.Clipboard,
		subtitle:     opts.Subtitle,
	}
	if m.exportOpts == nil {
		m.exportOpts = export.DefaultOptions()
	}
	if m.copyText == nil {
		m.copyText = clipboard.WriteAll
	}
	if opts.Camera != nil {
		// Capture hands the still over synchronously; keep only the newest.
		shots := make(chan string, 1)
		m.shots = shots
		m.camera = camera.NewControl(opts.Camera, func(dataURL string) {
			select {
			case <-shots:
			default:
			}
			shots <- dataURL
		}, log)
	}
	m.refresh()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// View renders the chat screen.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// refresh re-reads the panel state and re-renders the transcript.
func (m *Model) refresh() {
	m.state = m.panel.Snapshot()
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom || m.state.Loading() {
		m.viewport.GotoBottom()
	}
}

// syncCamera stops the preview once the panel has left the camera view.
func (m *Model) syncCamera() {
	if m.camera == nil || m.state.CameraOpen() || !m.camera.Mounted() {
		return
	}
	if err := m.camera.Unmount(); err != nil {
		m.log.Warn("camera unmount failed", zap.Error(err))
	}
}

func (m *Model) setNotice(kind styles.StatusKind, msg string) {
	m.notice = msg
	m.noticeKind = kind
}

// Shutdown releases the camera and tears down the panel. Called once the
// program has exited.
func (m Model) Shutdown() {
	if m.camera != nil {
		if err := m.camera.Unmount(); err != nil {
			m.log.Warn("camera unmount failed", zap.Error(err))
		}
	}
	m.panel.Close()
}

// State returns the last panel snapshot the screen rendered.
func (m Model) State() panel.State {
	return m.state
}
