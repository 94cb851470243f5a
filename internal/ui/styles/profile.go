// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by Configure.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// ResolveProfile picks the color profile: Ascii when color is disabled by
// flag or by NO_COLOR, otherwise the detected profile.
func ResolveProfile(noColor, envNoColor bool, detected termenv.Profile) termenv.Profile {
	if noColor || envNoColor {
		return termenv.Ascii
	}
	return detected
}

// ResolveDark reports whether dark colors apply for the named theme. Any
// name other than dark or light defers to detection.
func ResolveDark(theme string, detected bool) bool {
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	default:
		return detected
	}
}

// Configure applies the theme name and color switch to the default
// lipgloss renderer and returns a freshly built Theme.
func Configure(theme string, noColor bool) *Theme {
	output := termenv.NewOutput(os.Stdout)
	profile := ResolveProfile(noColor, termenv.EnvNoColor(), output.EnvColorProfile())
	lipgloss.SetColorProfile(profile)

	// Only query the terminal background when the theme leaves it open.
	var dark bool
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case ThemeDark, ThemeLight:
		dark = ResolveDark(theme, false)
	default:
		dark = output.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(dark)
	return NewTheme()
}
