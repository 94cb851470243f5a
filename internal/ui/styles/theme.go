// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Bubbles never shrink below this many columns.
const minBubbleWidth = 20

// Theme holds the styled components of the chat screen.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style
	Spinner         lipgloss.Style
	LoadingText     lipgloss.Style
	UploadPrompt    lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputContainer lipgloss.Style
	InputDisabled  lipgloss.Style
	InputPrompt    lipgloss.Style

	// ==========================================================================
	// OVERLAYS
	// ==========================================================================

	ModalBox    lipgloss.Style
	ModalTitle  lipgloss.Style
	ModalOption lipgloss.Style
	CameraBox   lipgloss.Style
	CameraTitle lipgloss.Style

	// ==========================================================================
	// STATUS
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	ErrorLine    lipgloss.Style
	Notice       lipgloss.Style
}

// NewTheme builds a theme for the current lipgloss color profile and
// background. Call Configure first to apply user overrides.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		ColorProfile: lipgloss.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.HeaderSubtitle = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)
	t.RoleLabel = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
	t.LoadingText = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.UploadPrompt = lipgloss.NewStyle().Foreground(Amber).Bold(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
	t.InputDisabled = t.InputContainer.BorderForeground(Overlay)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	t.ModalBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 3)
	t.ModalTitle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary).MarginBottom(1)
	t.ModalOption = lipgloss.NewStyle().Foreground(TextPrimary)
	t.CameraBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Cyan).
		Padding(1, 3)
	t.CameraTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan).MarginBottom(1)

	t.StatusBar = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.ErrorLine = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Notice = lipgloss.NewStyle().Foreground(Emerald)
}

// SetSize records the terminal size.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleWidth returns the content width for a message bubble: three
// quarters of the terminal minus border and padding.
func (t *Theme) BubbleWidth() int {
	w := t.Width*3/4 - 4
	if w < minBubbleWidth {
		return minBubbleWidth
	}
	return w
}

// Shortcut renders a "key desc" hint for the status bar.
func (t *Theme) Shortcut(key, desc string) string {
	return t.ShortcutKey.Render(key) + " " + t.ShortcutDesc.Render(desc)
}

// =============================================================================
// STATUS TEXT
// =============================================================================

// StatusKind selects indicator and color for Status.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusPending
	StatusSuccess
	StatusError
)

// Status renders msg with the indicator and color for kind.
func Status(kind StatusKind, msg string) string {
	var (
		indicator string
		color     lipgloss.AdaptiveColor
	)
	switch kind {
	case StatusPending:
		indicator, color = StatusIndicators.Pending, Amber
	case StatusSuccess:
		indicator, color = StatusIndicators.Success, Emerald
	case StatusError:
		indicator, color = StatusIndicators.Error, Rose
	default:
		indicator, color = StatusIndicators.Info, Cyan
	}
	return lipgloss.NewStyle().Foreground(color).Render(indicator + " " + msg)
}
