// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatdock/internal/config"
	"github.com/jeranaias/chatdock/internal/util"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const rootLongDesc string = `chatdock is a chat panel for an HTTP chat backend.

Without a subcommand it opens the terminal UI. Messages are sent with the
whole conversation as context; images and PDFs can be uploaded from a path
or captured from a camera source.

Configuration is read from ~/.chatdock/config.toml. Environment variables
(CHATDOCK_*) override file values and flags override both.

Examples:
  chatdock
  chatdock --pdf --api-url http://localhost:9000
  chatdock serve --listen 0.0.0.0:8080
  chatdock ask "What is in this receipt?"
  chatdock upload ~/scans/receipt.pdf`

const rootShortDesc string = "Chat with a backend from the terminal or the browser"

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	configPath    string
	apiURL        string
	pdfOnly       bool
	surfaceErrors bool
	cameraFeed    string
	cameraStill   string
	logLevel      string
	noColor       bool
}

// NewRootCmd builds the chatdock command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "chatdock",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cmd, cfg)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to a TOML or JSON config file")
	pf.StringVar(&flags.apiURL, "api-url", "", "Base URL of the chat backend")
	pf.BoolVar(&flags.pdfOnly, "pdf", false, "Accept PDF uploads only")
	pf.BoolVar(&flags.surfaceErrors, "surface-errors", false, "Show failed requests instead of only logging them")
	pf.StringVar(&flags.cameraFeed, "camera-feed", "", "Image file rewritten by a camera, watched for new frames")
	pf.StringVar(&flags.cameraStill, "camera-still", "", "Image file used as a fixed camera frame")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colors")

	cmd.AddCommand(
		newServeCmd(flags),
		newAskCmd(flags),
		newUploadCmd(flags),
		newCaptureCmd(flags),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		DisplayError(root.ErrOrStderr(), err, false)
		return ExitCode(err)
	}
	return ExitSuccess
}

// load reads the config file and applies flags that were set explicitly.
// The result becomes the process-wide config.
func (f *rootFlags) load(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFromPath(util.ExpandHome(f.configPath))
	} else {
		cfg, err = config.Load()
	}
	if cfg == nil {
		return nil, &ConfigError{Err: err}
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (using defaults)\n", err)
	}
	return f.apply(cmd, cfg)
}

// apply overrides cfg with the flags set on the command line, validates
// the result and installs it as the process-wide config.
func (f *rootFlags) apply(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	changed := cmd.Flags().Changed
	if changed("api-url") {
		cfg.API.BaseURL = f.apiURL
	}
	if changed("pdf") {
		cfg.Panel.PDFOnly = f.pdfOnly
	}
	if changed("surface-errors") {
		cfg.Panel.SurfaceErrors = f.surfaceErrors
	}
	if changed("camera-feed") {
		cfg.Camera.FeedPath = f.cameraFeed
	}
	if changed("camera-still") {
		cfg.Camera.StillPath = f.cameraStill
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("no-color") {
		cfg.UI.NoColor = f.noColor
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	config.SetGlobal(cfg)
	return cfg, nil
}
