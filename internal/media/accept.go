// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

import (
	"path/filepath"
	"strings"
)

// acceptRule pairs a chooser extension with the sniffed type it must carry.
type acceptRule struct {
	ext  string
	mime string
}

var (
	pdfRules = []acceptRule{
		{".pdf", "application/pdf"},
	}
	defaultRules = []acceptRule{
		{".png", "image/png"},
		{".jpg", "image/jpeg"},
		{".jpeg", "image/jpeg"},
		{".pdf", "application/pdf"},
	}
)

func rulesFor(pdfOnly bool) []acceptRule {
	if pdfOnly {
		return pdfRules
	}
	return defaultRules
}

// AcceptList returns the file-chooser accept string for the given mode:
// ".pdf" in PDF-only mode, otherwise ".png,.jpg,.jpeg,.pdf".
func AcceptList(pdfOnly bool) string {
	rules := rulesFor(pdfOnly)
	exts := make([]string, len(rules))
	for i, r := range rules {
		exts[i] = r.ext
	}
	return strings.Join(exts, ",")
}

// Accepts reports whether f may be uploaded in the given mode. Both the
// extension and the sniffed content type must match the same rule.
func Accepts(f *File, pdfOnly bool) bool {
	if f == nil {
		return false
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	for _, r := range rulesFor(pdfOnly) {
		if r.ext == ext && r.mime == f.ContentType {
			return true
		}
	}
	return false
}
