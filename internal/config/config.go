// Package config defines process configuration and how it is loaded.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Salt is the deployment secret keys are derived with. Never log it.
	Salt string `koanf:"salt"`

	// Recipient is the address payment requests are sent to.
	Recipient string `koanf:"recipient"`

	// Subject is the email subject line.
	Subject string `koanf:"subject"`

	// Template is the email body; TemplateFile, when set, takes precedence.
	Template     string `koanf:"template"`
	TemplateFile string `koanf:"template_file"`

	QR      QRConfig      `koanf:"qr"`
	History HistoryConfig `koanf:"history"`
}

// QRConfig controls QR image rendering.
type QRConfig struct {
	// Size is the PNG edge length in pixels.
	Size int `koanf:"size"`
	// Recovery is one of low, medium, high, highest.
	Recovery string `koanf:"recovery"`
}

// HistoryConfig selects where generations are recorded.
type HistoryConfig struct {
	// Backend is memory, file or sqlite.
	Backend string `koanf:"backend"`
	// Path is the JSON file or SQLite database location.
	Path string `koanf:"path"`
	// MaxEntries caps the history; zero keeps everything.
	MaxEntries int `koanf:"max_entries"`
}

const appName = "matchkey"

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Addr:      ":9080",
		Recipient: "payments@example.org",
		Subject:   "Referee payment request",
		QR: QRConfig{
			Size:     256,
			Recovery: "low",
		},
		History: HistoryConfig{
			Backend: "file",
			Path:    filepath.Join(DefaultDir(), "history.json"),
		},
	}
}

// DefaultDir returns the platform config directory for this program, e.g.
// ~/.config/matchkey on Linux. It falls back to the working directory.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(base, appName)
}

// SaltBytes returns the salt, or ErrMissingSalt when none is configured.
func (c *Config) SaltBytes() ([]byte, error) {
	if strings.TrimSpace(c.Salt) == "" {
		return nil, ErrMissingSalt
	}
	return []byte(c.Salt), nil
}

// TemplateBody returns the configured email body. An empty result selects
// the built-in template.
func (c *Config) TemplateBody() (string, error) {
	if c.TemplateFile == "" {
		return c.Template, nil
	}
	data, err := os.ReadFile(c.TemplateFile)
	if err != nil {
		return "", fmt.Errorf("%w: read template file: %w", ErrLoadConfig, err)
	}
	return string(data), nil
}

// Validate checks values that have a closed set of choices.
func (c *Config) Validate() error {
	switch c.History.Backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("%w: history.backend must be memory, file or sqlite, got %q", ErrInvalidConfig, c.History.Backend)
	}
	if c.History.Backend != "memory" && strings.TrimSpace(c.History.Path) == "" {
		return fmt.Errorf("%w: history.path must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	switch strings.ToLower(c.QR.Recovery) {
	case "low", "medium", "high", "highest":
	default:
		return fmt.Errorf("%w: qr.recovery must be low, medium, high or highest, got %q", ErrInvalidConfig, c.QR.Recovery)
	}
	if c.QR.Size <= 0 {
		return fmt.Errorf("%w: qr.size must be positive", ErrInvalidConfig)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("%w: history.max_entries must not be negative", ErrInvalidConfig)
	}
	return nil
}
