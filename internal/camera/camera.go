// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package camera provides the camera capture control: a live frame source
// that can be snapshotted into a JPEG data URL on demand.
//
// The control holds no state between captures beyond its frame source.
// Mount starts the preview, Unmount stops it, and every Capture yields an
// independent snapshot handed to the owner's callback.
package camera

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/chatdock/internal/logger"
)

// Errors returned by the capture control and frame sources.
var (
	// ErrNotMounted is returned by Capture before Mount or after Unmount.
	ErrNotMounted = errors.New("camera not mounted")

	// ErrNoFrame means the source has not produced a frame yet.
	ErrNoFrame = errors.New("no camera frame available")
)

// =============================================================================
// FRAME SOURCE
// =============================================================================

// FrameSource is the camera access collaborator. Snapshot returns the
// current frame as a JPEG data URL.
type FrameSource interface {
	Start(ctx context.Context) error
	Snapshot(ctx context.Context) (string, error)
	Stop() error
}

// =============================================================================
// CAPTURE CONTROL
// =============================================================================

// Control is the camera capture control. Safe for concurrent use.
type Control struct {
	src       FrameSource
	onCapture func(dataURL string)
	log       *zap.Logger

	mu      sync.Mutex
	mounted bool
}

// NewControl creates a control that hands every captured still to
// onCapture.
func NewControl(src FrameSource, onCapture func(dataURL string), log *zap.Logger) *Control {
	return &Control{
		src:       src,
		onCapture: onCapture,
		log:       logger.OrNop(log),
	}
}

// Mount starts the preview. Mounting an already mounted control is a no-op.
func (c *Control) Mount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted {
		return nil
	}
	if err := c.src.Start(ctx); err != nil {
		return err
	}
	c.mounted = true
	c.log.Debug("camera mounted")
	return nil
}

// Unmount stops the preview. Unmounting twice is a no-op.
func (c *Control) Unmount() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return nil
	}
	c.mounted = false
	c.log.Debug("camera unmounted")
	return c.src.Stop()
}

// Mounted reports whether the preview is running.
func (c *Control) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// Capture snapshots the current frame and passes it to the callback. The
// callback is not invoked when the snapshot fails.
func (c *Control) Capture(ctx context.Context) error {
	if !c.Mounted() {
		return ErrNotMounted
	}
	dataURL, err := c.src.Snapshot(ctx)
	if err != nil {
		c.log.Warn("camera snapshot failed", zap.Error(err))
		return err
	}
	if c.onCapture != nil {
		c.onCapture(dataURL)
	}
	return nil
}
