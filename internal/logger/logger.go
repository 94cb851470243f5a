// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger builds the zap loggers used across chatdock.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a config level name to a zap level. Unknown names fall
// back to info.
func ParseLevel(name string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func encoderConfig(color bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg
}

// New returns a console logger writing to w. Level colors are used only
// when w is a terminal-facing stream (stdout or stderr).
func New(level string, w io.Writer) *zap.Logger {
	color := w == os.Stderr || w == os.Stdout
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig(color)),
		zapcore.AddSync(w),
		ParseLevel(level),
	)
	return zap.New(core, zap.AddCaller())
}

// NewFile returns a logger appending to path, creating parent directories
// as needed. The returned close func flushes and closes the file.
func NewFile(level, path string) (*zap.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log := New(level, f)
	closeFn := func() error {
		_ = log.Sync()
		return f.Close()
	}
	return log, closeFn, nil
}

// OrNop returns log, or a no-op logger when log is nil.
func OrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
