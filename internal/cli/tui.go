// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/chatdock/internal/config"
	"github.com/jeranaias/chatdock/internal/logger"
	"github.com/jeranaias/chatdock/internal/ui/chat"
	"github.com/jeranaias/chatdock/internal/ui/styles"
	"github.com/jeranaias/chatdock/internal/util"
)

// runTUI opens the chat screen. The terminal belongs to Bubble Tea, so
// logs go to the configured file.
func runTUI(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	log, closeLog, err := logger.NewFile(cfg.Log.Level, util.ExpandHome(cfg.Log.File))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (logging disabled)\n", err)
		log, closeLog = zap.NewNop(), func() error { return nil }
	}
	defer closeLog()

	svc := newService(cfg, log)
	m := chat.New(chat.Options{
		Panel:        newPanel(cfg, svc, errorPolicy(cfg), log),
		Theme:        styles.Configure(cfg.UI.Theme, cfg.UI.NoColor),
		Camera:       cameraSource(cfg, log),
		Export:       exportOptions(cfg),
		ExportFormat: cfg.Export.Format,
		Subtitle:     svc.BaseURL(),
		Logger:       log,
	})

	log.Info("starting tui",
		zap.String("api", svc.BaseURL()),
		zap.Bool("pdf_only", cfg.Panel.PDFOnly),
		zap.Bool("camera", cfg.Camera.Enabled()),
	)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(chat.Model); ok {
		m = fm
	}
	m.Shutdown()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return &CommandError{Command: "chatdock", Err: err}
	}
	return nil
}
