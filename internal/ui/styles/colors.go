// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple is the primary accent: header, modal border, focus.
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan is the brand color and the camera view accent.
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald marks successful actions.
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose marks failures.
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber marks pending actions and the upload prompt.
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT
// =============================================================================

var (
	SurfaceDim    = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
	Overlay       = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
)

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

// User bubbles sit on the right in blue tones.
var (
	UserBubbleBg     = lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1D4ED8"}
	UserBubbleFg     = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
	UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}
)

// Assistant bubbles sit on the left in muted violet.
var (
	AssistantBubbleBg     = lipgloss.AdaptiveColor{Light: "#F5F3FF", Dark: "#3B3655"}
	AssistantBubbleFg     = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}
	AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}
)

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet holds ASCII shapes shown next to colored status text so
// state stays readable without color.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Pending string
	Info    string
}

// StatusIndicators is the indicator set used by the status bar.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Pending: "[..]",
	Info:    "[i]",
}
