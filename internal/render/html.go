// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"html"
	"net/url"
	"strings"

	"github.com/jeranaias/chatdock/internal/model"
)

// HTML renders a content part as an escaped HTML fragment: one <p> per text
// line, or a width-constrained <img> for image parts. Unsafe image URLs
// render as escaped text instead.
func HTML(part model.ContentPart) string {
	switch {
	case part.IsText():
		return textHTML(part.Text)
	case part.IsImage():
		u := part.URL()
		if !SafeImageURL(u) {
			return "<p>" + html.EscapeString(u) + "</p>"
		}
		return `<img src="` + html.EscapeString(u) + `" alt="Uploaded" style="max-width: 100%;">`
	default:
		return ""
	}
}

func textHTML(text string) string {
	var b strings.Builder
	for _, line := range Format(text) {
		b.WriteString("<p>")
		for _, sp := range line {
			writeSpanHTML(&b, sp)
		}
		b.WriteString("</p>")
	}
	return b.String()
}

func writeSpanHTML(b *strings.Builder, sp Span) {
	text := html.EscapeString(sp.Text)
	switch {
	case sp.Bold && sp.Italic:
		b.WriteString("<b><i>" + text + "</i></b>")
	case sp.Bold:
		b.WriteString("<b>" + text + "</b>")
	case sp.Italic:
		b.WriteString("<i>" + text + "</i>")
	default:
		b.WriteString(text)
	}
}

// SafeImageURL reports whether u may be used as an image source: http and
// https URLs, or data:image/ URLs.
func SafeImageURL(u string) bool {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(strings.ToLower(u), "data:image/") {
		return true
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return parsed.Host != ""
	default:
		return false
	}
}
