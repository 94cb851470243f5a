// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatdock/internal/config"
	"github.com/jeranaias/chatdock/internal/util"
)

const configLongDesc string = `View or create the configuration file.

Subcommands:
  show    Print the effective configuration (API key redacted)
  path    Print the configuration file location
  init    Write the effective configuration to the file

Examples:
  chatdock config show
  chatdock config init --api-url http://localhost:9000
  chatdock config init --force`

func newConfigCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or create the configuration file",
		Long:  configLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, root)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfig(cmd, root)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := configPath(root)
				if err != nil {
					return &ConfigError{Err: err}
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		newConfigInitCmd(root),
	)
	return cmd
}

func newConfigInitCmd(root *rootFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(root)
			if err != nil {
				return &ConfigError{Err: err}
			}
			_, statErr := os.Stat(path)
			exists := statErr == nil
			if exists && !force {
				return &UsageError{Reason: fmt.Sprintf("%s already exists (use --force to overwrite)", path)}
			}

			// Keep the values of a file being replaced when it still
			// parses; otherwise start from defaults.
			var cfg *config.Config
			if exists {
				cfg, _ = config.LoadFromPath(path)
			}
			if cfg == nil {
				cfg = config.Default()
				cfg.ApplyEnvOverrides()
			}
			cfg, err = root.apply(cmd, cfg)
			if err != nil {
				return err
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return &ConfigError{Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func showConfig(cmd *cobra.Command, root *rootFlags) error {
	cfg, err := root.load(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
	return nil
}

// configPath is --config when given, otherwise ~/.chatdock/config.toml.
func configPath(root *rootFlags) (string, error) {
	if root.configPath != "" {
		return util.ExpandHome(root.configPath), nil
	}
	return config.ConfigPathTOML()
}
