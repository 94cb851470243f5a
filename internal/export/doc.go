// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat transcripts to disk.
//
// # Formats
//
//   - HTML: standalone page, message text rendered through the render
//     package so emphasis matches the live view and nothing is unescaped
//   - Markdown: role headings with text kept as typed; images as ![](url)
//   - JSON: the full message list including IDs and timestamps
//
// # Usage
//
//	exp, err := export.ForFormat("html", nil)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ToFile(conv, exp, &export.Options{OutputDir: dir})
package export
