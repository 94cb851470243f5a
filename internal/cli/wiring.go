// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"

	"go.uber.org/zap"

	"github.com/jeranaias/chatdock/internal/api"
	"github.com/jeranaias/chatdock/internal/camera"
	"github.com/jeranaias/chatdock/internal/config"
	"github.com/jeranaias/chatdock/internal/export"
	"github.com/jeranaias/chatdock/internal/logger"
	"github.com/jeranaias/chatdock/internal/panel"
	"github.com/jeranaias/chatdock/internal/util"
)

// newService returns the HTTP client for the configured backend.
func newService(cfg *config.Config, log *zap.Logger) *api.Client {
	return api.NewClient(cfg.API.BaseURL).
		WithPaths(cfg.API.ChatPath, cfg.API.UploadPath).
		WithTimeout(cfg.API.Timeout()).
		WithAPIKey(cfg.API.APIKey).
		WithLogger(log)
}

func errorPolicy(cfg *config.Config) panel.ErrorPolicy {
	if cfg.Panel.SurfaceErrors {
		return panel.PolicySurface
	}
	return panel.PolicySilent
}

func newPanel(cfg *config.Config, svc api.Service, policy panel.ErrorPolicy, log *zap.Logger) *panel.Panel {
	return panel.New(svc, panel.Options{
		PDFOnly:     cfg.Panel.PDFOnly,
		ErrorPolicy: policy,
		Logger:      log,
	})
}

// cameraSource returns the configured frame source, or nil when the camera
// is not configured. A feed wins over a still.
func cameraSource(cfg *config.Config, log *zap.Logger) camera.FrameSource {
	switch {
	case cfg.Camera.FeedPath != "":
		return camera.NewFeedSource(util.ExpandHome(cfg.Camera.FeedPath), log)
	case cfg.Camera.StillPath != "":
		return camera.NewStillSource(util.ExpandHome(cfg.Camera.StillPath))
	default:
		return nil
	}
}

func exportOptions(cfg *config.Config) *export.Options {
	opts := export.DefaultOptions()
	opts.OutputDir = util.ExpandHome(cfg.Export.Dir)
	if cfg.UI.Theme == "light" {
		opts.Theme = "light"
	}
	return opts
}

// consoleLogger logs to w for the non-interactive commands.
func consoleLogger(cfg *config.Config, w io.Writer) *zap.Logger {
	return logger.New(cfg.Log.Level, w)
}
