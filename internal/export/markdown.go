// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/chatdock/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown. Message text already
// uses Markdown emphasis, so it is written as typed.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := checkConversation(conv); err != nil {
		return nil, err
	}

	var sb strings.Builder
	msgs := conv.Messages()

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %q\n", conv.Summary()))
	sb.WriteString(fmt.Sprintf("date: %s\n", conv.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(msgs)))
	sb.WriteString("generator: chatdock\n")
	sb.WriteString("---\n\n")

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(conv.Summary())))

	for i, msg := range msgs {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", msg.Role.DisplayName(), formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", msg.Role.DisplayName()))
		}

		part := msg.Part()
		if part.IsImage() {
			sb.WriteString(fmt.Sprintf("![Uploaded](<%s>)", part.URL()))
		} else {
			sb.WriteString(strings.TrimSpace(part.Text))
		}
		sb.WriteString("\n\n")

		if i < len(msgs)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\n*Exported from chatdock on %s*\n", formatTimestamp(time.Now())))
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "#", `\#`, "[", `\[`, "]", `\]`,
)

// escapeMarkdown escapes characters with special meaning in a heading.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
