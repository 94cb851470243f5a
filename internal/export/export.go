// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/chatdock/internal/model"
	"github.com/jeranaias/chatdock/internal/util"
)

// ErrEmptyConversation is returned when there is nothing to export.
var ErrEmptyConversation = errors.New("conversation has no messages")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation to one output format.
type Exporter interface {
	// Export renders the conversation.
	Export(conv *model.Conversation) ([]byte, error)

	// FileExtension returns the file extension, including the dot.
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeTimestamps adds per-message times.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark"). Default: "dark".
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

// ForFormat returns the exporter for a format name: html, md/markdown or
// json.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "html", "":
		return NewHTMLExporter(opts), nil
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile exports conv with exporter and writes the result atomically into
// opts.OutputDir. Returns the written path.
func ToFile(conv *model.Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := Filename(conv, exporter, time.Now())
	outputPath := filepath.Join(util.ExpandHome(opts.OutputDir), filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		// Non-fatal: the file exists either way.
		_ = openFile(outputPath)
	}
	return outputPath, nil
}

// Filename builds the output file name for conv.
func Filename(conv *model.Conversation, exporter Exporter, now time.Time) string {
	return fmt.Sprintf("chat_%s_%s%s",
		sanitizeFilename(conv.Summary()),
		now.Format("20060102_150405"),
		exporter.FileExtension(),
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

var filenameReplacer = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
	`"`, "-", "<", "-", ">", "-", "|", "-",
	" ", "_", "\t", "_", "\n", "_", "\r", "_",
)

// sanitizeFilename replaces characters that are invalid in file names on
// Windows or Unix and caps the length at 50 runes.
func sanitizeFilename(s string) string {
	s = util.TruncateRunes(s, 50)
	s = filenameReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return '-'
		}
		return r
	}, s)
	if s == "" {
		return "conversation"
	}
	return s
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}

func checkConversation(conv *model.Conversation) error {
	if conv == nil {
		return fmt.Errorf("conversation is nil")
	}
	if conv.IsEmpty() {
		return ErrEmptyConversation
	}
	return nil
}
