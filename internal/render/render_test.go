// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdock/internal/model"
)

// =============================================================================
// FORMAT TESTS
// =============================================================================

func TestFormat_PrecedenceOrder(t *testing.T) {
	lines := Format("**a** *b* __c__")
	require.Len(t, lines, 1)

	assert.Equal(t, Line{
		{Text: "a", Style: Style{Bold: true, Italic: true}},
		{Text: " "},
		{Text: "b", Style: Style{Italic: true}},
		{Text: " "},
		{Text: "c", Style: Style{Bold: true}},
	}, lines[0])
}

func TestFormat_PerLine(t *testing.T) {
	// A marker pair split across lines is not matched.
	lines := Format("*open\nclose*")
	require.Len(t, lines, 2)
	assert.Equal(t, Line{{Text: "*open"}}, lines[0])
	assert.Equal(t, Line{{Text: "close*"}}, lines[1])
}

func TestFormat_EmptyLinesKept(t *testing.T) {
	lines := Format("a\n\nb")
	require.Len(t, lines, 3)
	assert.Empty(t, lines[1])
}

func TestFormat_NestedBoldItalic(t *testing.T) {
	lines := Format("__x *y* z__")
	require.Len(t, lines, 1)
	assert.Equal(t, Line{
		{Text: "x ", Style: Style{Bold: true}},
		{Text: "y", Style: Style{Bold: true, Italic: true}},
		{Text: " z", Style: Style{Bold: true}},
	}, lines[0])
}

func TestFormat_ForgedMarkersStripped(t *testing.T) {
	lines := Format("\uE000x\uE001\uE004")
	require.Len(t, lines, 1)
	assert.Equal(t, Line{{Text: "x"}}, lines[0])
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "a b c", PlainText("**a** *b* __c__"))
	assert.Equal(t, "2 * 3", PlainText("2 * 3"))
}

// =============================================================================
// HTML TESTS
// =============================================================================

func TestHTML_Text(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"emphasis", "**a** *b* __c__", "<p><b><i>a</i></b> <i>b</i> <b>c</b></p>"},
		{"lines", "line1\nline2", "<p>line1</p><p>line2</p>"},
		{"inline italic", "2*3*4", "<p>2<i>3</i>4</p>"},
		{"dunder", "__init__.py", "<p><b>init</b>.py</p>"},
		{"empty", "", "<p></p>"},
		{"script", "<script>alert(1)</script>", "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>"},
		{"escaped inside emphasis", "**<b>x</b>**", "<p><b><i>&lt;b&gt;x&lt;/b&gt;</i></b></p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTML(model.TextPart(tt.in)))
		})
	}
}

func TestHTML_Image(t *testing.T) {
	got := HTML(model.ImagePart("https://x/a.jpg"))
	assert.Equal(t, `<img src="https://x/a.jpg" alt="Uploaded" style="max-width: 100%;">`, got)

	quoted := HTML(model.ImagePart(`https://x/a.jpg?"onerror="alert(1)`))
	assert.NotContains(t, quoted, `"onerror="`)

	unsafe := HTML(model.ImagePart("javascript:alert(1)"))
	assert.False(t, strings.Contains(unsafe, "<img"))
	assert.Equal(t, "<p>javascript:alert(1)</p>", unsafe)
}

func TestHTML_ZeroPart(t *testing.T) {
	assert.Equal(t, "", HTML(model.ContentPart{}))
}

func TestSafeImageURL(t *testing.T) {
	assert.True(t, SafeImageURL("https://cdn.example.com/a.png"))
	assert.True(t, SafeImageURL("http://localhost:8000/files/1.jpg"))
	assert.True(t, SafeImageURL("data:image/jpeg;base64,AAAA"))
	assert.False(t, SafeImageURL("data:text/html;base64,AAAA"))
	assert.False(t, SafeImageURL("javascript:alert(1)"))
	assert.False(t, SafeImageURL("/relative/path.png"))
	assert.False(t, SafeImageURL("https://"))
}

// =============================================================================
// TERMINAL / PLAIN TESTS
// =============================================================================

func TestTerminal_Text(t *testing.T) {
	out := Terminal(model.TextPart("**a** *b* __c__\nnext"), 80)
	assert.NotContains(t, out, "*")
	assert.NotContains(t, out, "__")
	assert.Contains(t, out, "next")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestTerminal_ImageTruncated(t *testing.T) {
	long := "https://cdn.example.com/" + strings.Repeat("x", 100) + ".jpg"
	out := Terminal(model.ImagePart(long), 40)
	assert.Contains(t, out, "[image]")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, ".jpg")
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "a b", Plain(model.TextPart("**a** *b*")))
	assert.Equal(t, "[image] https://x/a.jpg", Plain(model.ImagePart("https://x/a.jpg")))
}
