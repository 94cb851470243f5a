// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdock/internal/model"
	"github.com/jeranaias/chatdock/internal/util"
)

var (
	boldItalicStyle = lipgloss.NewStyle().Bold(true).Italic(true)
	boldStyle       = lipgloss.NewStyle().Bold(true)
	italicStyle     = lipgloss.NewStyle().Italic(true)
	imageLabelStyle = lipgloss.NewStyle().Faint(true)
)

const imageLabel = "[image] "

// Terminal renders a content part with ANSI styling. Image parts render as
// a labelled URL truncated to width columns; width <= 0 disables
// truncation.
func Terminal(part model.ContentPart, width int) string {
	switch {
	case part.IsText():
		return textTerminal(part.Text)
	case part.IsImage():
		u := part.URL()
		if width > 0 {
			u = util.TruncateWidth(u, width-len(imageLabel))
		}
		return imageLabelStyle.Render(imageLabel) + u
	default:
		return ""
	}
}

func textTerminal(text string) string {
	lines := Format(text)
	out := make([]string, len(lines))
	for i, line := range lines {
		var b strings.Builder
		for _, sp := range line {
			switch {
			case sp.Bold && sp.Italic:
				b.WriteString(boldItalicStyle.Render(sp.Text))
			case sp.Bold:
				b.WriteString(boldStyle.Render(sp.Text))
			case sp.Italic:
				b.WriteString(italicStyle.Render(sp.Text))
			default:
				b.WriteString(sp.Text)
			}
		}
		out[i] = b.String()
	}
	return strings.Join(out, "\n")
}

// Plain renders a content part as unstyled text.
func Plain(part model.ContentPart) string {
	switch {
	case part.IsText():
		return PlainText(part.Text)
	case part.IsImage():
		return imageLabel + part.URL()
	default:
		return ""
	}
}
