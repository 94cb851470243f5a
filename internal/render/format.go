// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"
)

// Style is the emphasis applied to a span.
type Style struct {
	Bold   bool
	Italic bool
}

// Span is a run of text sharing one style.
type Span struct {
	Text string
	Style
}

// Line is the spans of one source line, in order.
type Line []Span

// Private-use runes stand in for emphasis boundaries while the passes run.
// They are stripped from input first, so user text can never forge them.
const (
	markBoldItalicOpen  = '\uE000'
	markBoldItalicClose = '\uE001'
	markItalicOpen      = '\uE002'
	markItalicClose     = '\uE003'
	markBoldOpen        = '\uE004'
	markBoldClose       = '\uE005'
)

type pass struct {
	re   *regexp.Regexp
	repl string
}

// Order matters: each pass sees the output of the previous one.
var passes = []pass{
	{regexp.MustCompile(`\*\*(.*?)\*\*`), string(markBoldItalicOpen) + "${1}" + string(markBoldItalicClose)},
	{regexp.MustCompile(`\*(.*?)\*`), string(markItalicOpen) + "${1}" + string(markItalicClose)},
	{regexp.MustCompile(`__(.*?)__`), string(markBoldOpen) + "${1}" + string(markBoldClose)},
}

func isMarker(r rune) bool {
	return r >= markBoldItalicOpen && r <= markBoldClose
}

// Format splits text into lines and resolves emphasis markers into spans.
// Every line of the input yields exactly one Line, possibly empty.
func Format(text string) []Line {
	text = strings.Map(func(r rune) rune {
		if isMarker(r) {
			return -1
		}
		return r
	}, text)

	src := strings.Split(text, "\n")
	lines := make([]Line, len(src))
	for i, s := range src {
		for _, p := range passes {
			s = p.re.ReplaceAllString(s, p.repl)
		}
		lines[i] = spans(s)
	}
	return lines
}

// spans walks a marked line and emits merged styled spans.
func spans(s string) Line {
	var (
		line       Line
		bold, ital int
		cur        strings.Builder
		curStyle   Style
	)

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		text := cur.String()
		cur.Reset()
		if n := len(line); n > 0 && line[n-1].Style == curStyle {
			line[n-1].Text += text
			return
		}
		line = append(line, Span{Text: text, Style: curStyle})
	}

	for _, r := range s {
		if !isMarker(r) {
			style := Style{Bold: bold > 0, Italic: ital > 0}
			if style != curStyle {
				flush()
				curStyle = style
			}
			cur.WriteRune(r)
			continue
		}
		switch r {
		case markBoldItalicOpen:
			bold++
			ital++
		case markBoldItalicClose:
			bold = max(bold-1, 0)
			ital = max(ital-1, 0)
		case markItalicOpen:
			ital++
		case markItalicClose:
			ital = max(ital-1, 0)
		case markBoldOpen:
			bold++
		case markBoldClose:
			bold = max(bold-1, 0)
		}
	}
	flush()
	return line
}

// PlainText returns text with emphasis markers removed, one line per
// source line.
func PlainText(text string) string {
	lines := Format(text)
	out := make([]string, len(lines))
	for i, l := range lines {
		var b strings.Builder
		for _, sp := range l {
			b.WriteString(sp.Text)
		}
		out[i] = b.String()
	}
	return strings.Join(out, "\n")
}
