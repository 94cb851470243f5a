// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdock/internal/api"
	"github.com/jeranaias/chatdock/internal/ui/styles"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the backend could not be reached or failed
	ExitNetworkError = 5
)

// errRequestFailed marks a panel request that completed as failed.
var errRequestFailed = errors.New("request failed")

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a command that could not complete.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// UsageError is an invalid argument or flag value.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string { return e.Reason }

// ConfigError wraps a configuration that failed to load or validate.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "config: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// =============================================================================
// DISPLAY
// =============================================================================

var errorLabel = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)

// DisplayError writes err to w, as JSON when jsonMode is set.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"error":     err.Error(),
			"exit_code": ExitCode(err),
			"success":   false,
		})
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorLabel.Render("[ERROR]"), err.Error())
}

// ExitCode picks the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return ExitConfigError
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) || errors.Is(err, errRequestFailed) {
		return ExitNetworkError
	}
	return ExitGeneralError
}
