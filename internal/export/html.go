// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/chatdock/internal/model"
	"github.com/jeranaias/chatdock/internal/render"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := checkConversation(conv); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}
	title := html.EscapeString(conv.Summary())
	msgs := conv.Messages()

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", title))
	sb.WriteString("    <meta name=\"generator\" content=\"chatdock\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(exportCSS)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", title))
	sb.WriteString(fmt.Sprintf("            <div class=\"metadata\">%s &middot; %d messages</div>\n",
		formatTimestamp(conv.CreatedAt), len(msgs)))
	sb.WriteString("        </header>\n")

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range msgs {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString(fmt.Sprintf("        <footer class=\"footer\">Exported from <strong>chatdock</strong> on %s</footer>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("    </div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string { return ".html" }

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string { return "text/html" }

// renderMessage renders one message bubble.
func (e *HTMLExporter) renderMessage(msg model.Message) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", html.EscapeString(msg.Role.String())))
	sb.WriteString("                <div class=\"message-header\">")
	sb.WriteString(fmt.Sprintf("<span class=\"role-label\">%s</span>", html.EscapeString(msg.Role.DisplayName())))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("<span class=\"timestamp\">%s</span>", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("</div>\n")
	sb.WriteString("                <div class=\"message-content\">")
	sb.WriteString(render.HTML(msg.Part()))
	sb.WriteString("</div>\n")
	sb.WriteString("            </div>\n")
	return sb.String()
}

const exportCSS = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        .dark-theme {
            --bg: #1a1b26; --panel: #24283b; --text: #c0caf5; --muted: #565f89;
            --user: #1f2335; --assistant: #24283b; --accent-user: #7aa2f7; --accent-assistant: #9ece6a;
        }
        .light-theme {
            --bg: #ffffff; --panel: #f7f8fa; --text: #24292e; --muted: #6a737d;
            --user: #f6f8fa; --assistant: #ffffff; --accent-user: #0366d6; --accent-assistant: #22863a;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            line-height: 1.6; color: var(--text); background: var(--bg); padding: 20px;
        }
        .container { max-width: 900px; margin: 0 auto; background: var(--panel); border-radius: 12px; overflow: hidden; }
        .header { padding: 24px 32px; border-bottom: 1px solid var(--muted); }
        .header h1 { font-size: 24px; margin-bottom: 8px; }
        .metadata, .timestamp, .footer { color: var(--muted); font-size: 14px; }
        .conversation { padding: 24px 32px; }
        .message { margin-bottom: 20px; padding: 16px; border-radius: 8px; border-left: 4px solid transparent; }
        .user-message { background: var(--user); border-left-color: var(--accent-user); }
        .assistant-message { background: var(--assistant); border-left-color: var(--accent-assistant); }
        .message-header { display: flex; justify-content: space-between; margin-bottom: 8px; font-weight: 600; }
        .message-content p { margin-bottom: 4px; white-space: pre-wrap; }
        .footer { padding: 16px 32px; text-align: center; }
    </style>
`
