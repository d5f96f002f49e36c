// Package config loads server settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/palette-tools-mcp/internal/credential"
	"github.com/ironsheep/palette-tools-mcp/internal/palette"
)

// Config holds the server configuration.
type Config struct {
	Gemini     GeminiConfig     `yaml:"gemini"`
	Credential CredentialConfig `yaml:"credential"`
	Export     ExportConfig     `yaml:"export"`
	Eyedropper EyedropperConfig `yaml:"eyedropper"`
	Fetch      FetchConfig      `yaml:"fetch"`
	LogLevel   string           `yaml:"log_level"`
}

// GeminiConfig holds the remote analyzer settings.
type GeminiConfig struct {
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	Language    string  `yaml:"language"`
	BaseURL     string  `yaml:"base_url"`
	// MaxUploadEdge bounds the longer side of the image sent for analysis.
	MaxUploadEdge int `yaml:"max_upload_edge"`
}

// CredentialConfig holds where the API key lives.
type CredentialConfig struct {
	Path   string `yaml:"path"`
	EnvVar string `yaml:"env_var"`
}

// ExportConfig holds PDF export settings.
type ExportConfig struct {
	Theme     string `yaml:"theme"`
	FontPath  string `yaml:"font_path"`
	OutputDir string `yaml:"output_dir"`
}

// EyedropperConfig holds loupe defaults.
type EyedropperConfig struct {
	LoupeRadius int `yaml:"loupe_radius"`
	LoupeZoom   int `yaml:"loupe_zoom"`
}

// FetchConfig bounds image downloads.
type FetchConfig struct {
	MaxBytes       int64 `yaml:"max_bytes"`
	TimeoutSeconds int   `yaml:"timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:         palette.DefaultModel,
			Temperature:   0.2,
			Language:      "en",
			MaxUploadEdge: 1536,
		},
		Credential: CredentialConfig{
			Path:   credential.DefaultPath(),
			EnvVar: "GEMINI_API_KEY",
		},
		Export: ExportConfig{
			Theme: "dark",
		},
		Eyedropper: EyedropperConfig{
			LoupeRadius: 5,
			LoupeZoom:   12,
		},
		Fetch: FetchConfig{
			MaxBytes:       20 << 20,
			TimeoutSeconds: 30,
		},
		LogLevel: "info",
	}
}

// LoadConfig reads filename over the defaults and applies environment
// overrides. A missing file is not an error; an empty filename skips the file.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("PALETTE_MCP_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("PALETTE_MCP_LANGUAGE"); v != "" {
		cfg.Gemini.Language = v
	}
	if v := os.Getenv("PALETTE_MCP_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Gemini.Temperature = float32(f)
		}
	}
	if v := os.Getenv("PALETTE_MCP_THEME"); v != "" {
		cfg.Export.Theme = v
	}
	if v := os.Getenv("PALETTE_MCP_CREDENTIAL_PATH"); v != "" {
		cfg.Credential.Path = v
	}
	if v := os.Getenv("PALETTE_MCP_FONT"); v != "" {
		cfg.Export.FontPath = v
	}
	if v := os.Getenv("PALETTE_MCP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later and far away.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Export.Theme) {
	case "dark", "light":
	default:
		return fmt.Errorf("export.theme must be dark or light, got %q", c.Export.Theme)
	}
	if c.Gemini.MaxUploadEdge < 0 {
		return fmt.Errorf("gemini.max_upload_edge must not be negative")
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch.max_bytes must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel maps debug/info/warn/error to a slog level. Empty is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
