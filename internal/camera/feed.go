// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/chatdock/internal/logger"
)

// FeedSource follows a frame file that an external capture process keeps
// overwriting, for example:
//
//	ffmpeg -f v4l2 -i /dev/video0 -vf fps=5 -update 1 -y /tmp/chatdock/frame.jpg
//
// The parent directory is watched with fsnotify so both in-place writes
// and atomic renames are picked up. Snapshot returns the newest complete
// frame, waiting for the first one if none has arrived yet.
type FeedSource struct {
	path string
	log  *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
	frame   []byte
	ready   chan struct{}
	stopped chan struct{}
}

// NewFeedSource returns a source following the frame file at path.
func NewFeedSource(path string, log *zap.Logger) *FeedSource {
	return &FeedSource{path: path, log: logger.OrNop(log)}
}

// Start begins watching the frame file. Starting a running source is a
// no-op.
func (f *FeedSource) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("camera feed: %w", err)
	}
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		w.Close()
		return fmt.Errorf("camera feed: watch %s: %w", filepath.Dir(f.path), err)
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	f.watcher = w
	f.cancel = cancel
	f.done = make(chan struct{})
	f.frame = nil
	f.ready = make(chan struct{})
	f.stopped = make(chan struct{})

	// A frame may already be on disk.
	f.loadLocked()

	go f.processEvents(watchCtx, w, f.done)
	return nil
}

// Stop releases the watcher and drops the cached frame.
func (f *FeedSource) Stop() error {
	f.mu.Lock()
	w, cancel, done, stopped := f.watcher, f.cancel, f.done, f.stopped
	f.watcher, f.cancel, f.done, f.stopped = nil, nil, nil, nil
	f.frame = nil
	f.mu.Unlock()

	if w == nil {
		return nil
	}
	close(stopped)
	cancel()
	err := w.Close()
	<-done
	return err
}

// Snapshot returns the newest frame as a JPEG data URL.
func (f *FeedSource) Snapshot(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.watcher == nil {
		f.mu.Unlock()
		return "", ErrNotMounted
	}
	ready, stopped := f.ready, f.stopped
	f.mu.Unlock()

	select {
	case <-ready:
	case <-stopped:
		return "", ErrNotMounted
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrNoFrame, ctx.Err())
	}

	f.mu.Lock()
	frame, running := f.frame, f.watcher != nil
	f.mu.Unlock()
	if !running {
		return "", ErrNotMounted
	}
	if frame == nil {
		return "", ErrNoFrame
	}
	return frameDataURL(frame)
}

// processEvents reloads the frame whenever the file is written or renamed
// into place.
func (f *FeedSource) processEvents(ctx context.Context, w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	target := filepath.Clean(f.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				f.mu.Lock()
				if f.watcher == w {
					f.loadLocked()
				}
				f.mu.Unlock()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.log.Warn("camera feed watch error", zap.Error(err))
		}
	}
}

// loadLocked reads the frame file. A frame is cached only when it decodes
// completely, so a file caught mid-write keeps the previous frame. Caller
// holds f.mu.
func (f *FeedSource) loadLocked() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.log.Debug("camera feed read failed", zap.Error(err))
		}
		return
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		f.log.Debug("camera feed skipped incomplete frame", zap.Int("bytes", len(data)), zap.Error(err))
		return
	}
	f.frame = data
	select {
	case <-f.ready:
	default:
		close(f.ready)
	}
}
