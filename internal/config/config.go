// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatdock/internal/util"
)

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config is the root configuration.
type Config struct {
	API    APIConfig    `toml:"api" json:"api"`
	Panel  PanelConfig  `toml:"panel" json:"panel"`
	Camera CameraConfig `toml:"camera" json:"camera"`
	Server ServerConfig `toml:"server" json:"server"`
	Export ExportConfig `toml:"export" json:"export"`
	Log    LogConfig    `toml:"log" json:"log"`
	UI     UIConfig     `toml:"ui" json:"ui"`
}

// APIConfig locates the chat backend.
type APIConfig struct {
	BaseURL     string `toml:"base_url" json:"base_url"`
	ChatPath    string `toml:"chat_path" json:"chat_path"`
	UploadPath  string `toml:"upload_path" json:"upload_path"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
	APIKey      string `toml:"api_key,omitempty" json:"api_key,omitempty"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// PanelConfig controls chat panel behavior.
type PanelConfig struct {
	// PDFOnly restricts uploads to PDFs and opens the file chooser directly.
	PDFOnly bool `toml:"pdf_only" json:"pdf_only"`

	// SurfaceErrors shows failed requests to the user instead of only
	// logging them.
	SurfaceErrors bool `toml:"surface_errors" json:"surface_errors"`
}

// CameraConfig selects the frame source. FeedPath wins when both are set.
type CameraConfig struct {
	FeedPath  string `toml:"feed_path" json:"feed_path"`
	StillPath string `toml:"still_path" json:"still_path"`
}

// Enabled reports whether any frame source is configured.
func (c CameraConfig) Enabled() bool {
	return c.FeedPath != "" || c.StillPath != ""
}

// ServerConfig controls the browser front end.
type ServerConfig struct {
	ListenAddr      string  `toml:"listen_addr" json:"listen_addr"`
	SessionTTLMins  int     `toml:"session_ttl_mins" json:"session_ttl_mins"`
	RateLimitPerSec float64 `toml:"rate_limit_per_sec" json:"rate_limit_per_sec"`
	RateBurst       int     `toml:"rate_burst" json:"rate_burst"`
	MaxSessions     int     `toml:"max_sessions" json:"max_sessions"`
}

// SessionTTL returns the idle session lifetime.
func (s ServerConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLMins) * time.Minute
}

// ExportConfig controls transcript export.
type ExportConfig struct {
	Dir    string `toml:"dir" json:"dir"`
	Format string `toml:"format" json:"format"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// UIConfig controls terminal presentation.
type UIConfig struct {
	Theme   string `toml:"theme" json:"theme"`
	NoColor bool   `toml:"no_color" json:"no_color"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8000",
			ChatPath:    "/chat",
			UploadPath:  "/upload",
			TimeoutSecs: 60,
		},
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:8080",
			SessionTTLMins:  30,
			RateLimitPerSec: 2,
			RateBurst:       5,
			MaxSessions:     500,
		},
		Export: ExportConfig{
			Dir:    "~/.chatdock/exports",
			Format: "html",
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.chatdock/chatdock.log",
		},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatdock configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatdock"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.chatdock/config.toml, falling back to config.json and then
// to defaults. Environment overrides are applied last. A file that fails
// to parse is reported alongside the default config.
func Load() (*Config, error) {
	var loadErr error

	for _, candidate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := candidate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err == nil {
			return cfg, nil
		}
		loadErr = err
		break
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

// LoadFromPath loads a specific TOML or JSON file (by extension), applies
// environment overrides and validates the result.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg and fills missing values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON decodes a JSON file into cfg and fills missing values.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// fillDefaults fills zero values with defaults. Booleans are left alone.
func fillDefaults(cfg *Config) {
	d := Default()

	// API
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = d.API.BaseURL
	}
	if cfg.API.ChatPath == "" {
		cfg.API.ChatPath = d.API.ChatPath
	}
	if cfg.API.UploadPath == "" {
		cfg.API.UploadPath = d.API.UploadPath
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = d.API.TimeoutSecs
	}

	// Server
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = d.Server.ListenAddr
	}
	if cfg.Server.SessionTTLMins == 0 {
		cfg.Server.SessionTTLMins = d.Server.SessionTTLMins
	}
	if cfg.Server.RateLimitPerSec == 0 {
		cfg.Server.RateLimitPerSec = d.Server.RateLimitPerSec
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = d.Server.RateBurst
	}
	if cfg.Server.MaxSessions == 0 {
		cfg.Server.MaxSessions = d.Server.MaxSessions
	}

	// Export
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = d.Export.Dir
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = d.Export.Format
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.File == "" {
		cfg.Log.File = d.Log.File
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = d.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to ~/.chatdock/config.toml.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML. The file is created 0600
// since it may hold an API key.
func SaveTOML(cfg *Config, path string) error {
	err := util.WriteFileAtomic(path, 0600, func(w io.Writer) error {
		if _, err := io.WriteString(w, "# chatdock configuration file\n\n"); err != nil {
			return err
		}
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("api.base_url", "invalid URL '%s', must be an absolute http(s) URL", c.API.BaseURL)
	}
	for field, p := range map[string]string{"api.chat_path": c.API.ChatPath, "api.upload_path": c.API.UploadPath} {
		if !strings.HasPrefix(p, "/") {
			add(field, "path '%s' must start with '/'", p)
		}
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		add("api.timeout_secs", "timeout %d out of range, must be 1-600", c.API.TimeoutSecs)
	}

	if c.Server.SessionTTLMins < 1 {
		add("server.session_ttl_mins", "must be at least 1, got %d", c.Server.SessionTTLMins)
	}
	if c.Server.RateLimitPerSec <= 0 {
		add("server.rate_limit_per_sec", "must be positive, got %g", c.Server.RateLimitPerSec)
	}
	if c.Server.RateBurst < 1 {
		add("server.rate_burst", "must be at least 1, got %d", c.Server.RateBurst)
	}
	if c.Server.MaxSessions < 1 {
		add("server.max_sessions", "must be at least 1, got %d", c.Server.MaxSessions)
	}

	switch strings.ToLower(c.Export.Format) {
	case "html", "md", "markdown", "json":
	default:
		add("export.format", "invalid format '%s', must be one of: html, md, json", c.Export.Format)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - CHATDOCK_API_URL: overrides api.base_url
//   - CHATDOCK_API_KEY: overrides api.api_key
//   - CHATDOCK_PDF_ONLY: "1" or "true" enables PDF-only mode
//   - CHATDOCK_SURFACE_ERRORS: "1" or "true" shows request failures
//   - CHATDOCK_CAMERA_FEED: overrides camera.feed_path
//   - CHATDOCK_LISTEN: overrides server.listen_addr
//   - CHATDOCK_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATDOCK_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CHATDOCK_API_KEY"); v != "" {
		c.API.APIKey = v
	}
	if v := os.Getenv("CHATDOCK_PDF_ONLY"); v != "" {
		c.Panel.PDFOnly = parseBool(v)
	}
	if v := os.Getenv("CHATDOCK_SURFACE_ERRORS"); v != "" {
		c.Panel.SurfaceErrors = parseBool(v)
	}
	if v := os.Getenv("CHATDOCK_CAMERA_FEED"); v != "" {
		c.Camera.FeedPath = v
	}
	if v := os.Getenv("CHATDOCK_LISTEN"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("CHATDOCK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// =============================================================================
// UTILITY METHODS
// =============================================================================

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as indented JSON with the API key
// redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.API.APIKey != "" {
		safe.API.APIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the process-wide configuration. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the process-wide configuration.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
