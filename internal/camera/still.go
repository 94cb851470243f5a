// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package camera

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/chatdock/internal/media"
)

// StillSource serves a fixed image file as every frame. Useful on machines
// without a camera and in tests.
type StillSource struct {
	Path string
}

// NewStillSource returns a source serving the image at path.
func NewStillSource(path string) *StillSource {
	return &StillSource{Path: path}
}

// Start checks the image exists.
func (s *StillSource) Start(ctx context.Context) error {
	if _, err := os.Stat(s.Path); err != nil {
		return fmt.Errorf("still image: %w", err)
	}
	return nil
}

// Snapshot reads the image and returns it as a JPEG data URL.
func (s *StillSource) Snapshot(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("still image: %w", err)
	}
	return frameDataURL(data)
}

// Stop is a no-op.
func (s *StillSource) Stop() error { return nil }

func frameDataURL(data []byte) (string, error) {
	jpg, err := media.ToJPEG(data)
	if err != nil {
		return "", err
	}
	return media.EncodeDataURL(media.CapturedType, jpg), nil
}
