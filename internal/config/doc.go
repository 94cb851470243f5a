// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatdock.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (applied by the cli package)
//   - Environment variables (CHATDOCK_*)
//   - ~/.chatdock/config.toml
//   - ~/.chatdock/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := api.NewClient(cfg.API.BaseURL).WithTimeout(cfg.API.Timeout())
package config
