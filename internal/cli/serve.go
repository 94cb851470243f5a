// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/chatdock/internal/panel"
	"github.com/jeranaias/chatdock/internal/server"
)

const serveLongDesc string = `Serve the chat panel to browsers.

Every browser session gets its own conversation. Idle sessions are closed
after server.session_ttl_mins. The camera option uses the browser's camera.

Examples:
  chatdock serve
  chatdock serve --listen 0.0.0.0:8080 --pdf`

const serveShortDesc string = "Serve the chat panel over HTTP"

// shutdownTimeout bounds how long in-flight requests may take on exit.
const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	root   *rootFlags
	listen string
}

func newServeCmd(root *rootFlags) *cobra.Command {
	cmder := &serveCommander{root: root}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default from config)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.root.load(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		cfg.Server.ListenAddr = c.listen
	}

	log := consoleLogger(cfg, cmd.ErrOrStderr())
	defer log.Sync()

	svc := newService(cfg, log)
	policy := errorPolicy(cfg)
	srv := server.New(server.Options{
		ListenAddr:  cfg.Server.ListenAddr,
		SessionTTL:  cfg.Server.SessionTTL(),
		RateLimit:   cfg.Server.RateLimitPerSec,
		RateBurst:   cfg.Server.RateBurst,
		MaxSessions: cfg.Server.MaxSessions,
		Export:      exportOptions(cfg),
		NewPanel: func() *panel.Panel {
			return newPanel(cfg, svc, policy, log)
		},
		Logger: log,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		if err != nil {
			return &CommandError{Command: "serve", Err: err}
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return &CommandError{Command: "serve", Err: err}
	}
	return nil
}
