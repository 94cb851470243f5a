// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
)

// MaxFileSize caps the size of a file read for upload.
const MaxFileSize = 20 * 1024 * 1024

// ErrTooLarge is returned when a file exceeds MaxFileSize.
var ErrTooLarge = errors.New("file exceeds upload size limit")

// File is an in-memory binary payload ready for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (f *File) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// NewFile builds a File from raw bytes, sniffing the content type.
func NewFile(name string, data []byte) *File {
	return &File{
		Name:        filepath.Base(name),
		ContentType: DetectContentType(data),
		Data:        data,
	}
}

// Open reads the file at path into memory.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	return NewFile(path, data), nil
}

// DetectContentType returns the MIME type from magic bytes, or
// application/octet-stream when unknown.
func DetectContentType(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream"
	}
	return kind.MIME.Value
}
