// Package config provides configuration loading and structs for the extraction service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Preview    PreviewConfig    `yaml:"preview"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// FetchConfig controls how remote and local document references are resolved.
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	MaxBytes    int64         `yaml:"max_bytes"`
	UserAgent   string        `yaml:"user_agent"`
	AllowLocal  *bool         `yaml:"allow_local"`
}

// AllowLocalOrDefault reports whether file paths may be read; defaults to true when unset.
func (f *FetchConfig) AllowLocalOrDefault() bool {
	if f.AllowLocal != nil {
		return *f.AllowLocal
	}
	return true
}

// ExtractionConfig holds strategy chain settings.
type ExtractionConfig struct {
	StrategyTimeout time.Duration `yaml:"strategy_timeout"`
	// Disabled lists strategy methods (native, ocr, structural) that are never attempted.
	Disabled   []string  `yaml:"disabled"`
	Rasterizer string    `yaml:"rasterizer"`
	OCR        OCRConfig `yaml:"ocr"`
}

// IsDisabled reports whether method appears in Disabled.
func (e *ExtractionConfig) IsDisabled(method string) bool {
	for _, d := range e.Disabled {
		if strings.EqualFold(strings.TrimSpace(d), method) {
			return true
		}
	}
	return false
}

// OCRConfig holds recognizer settings.
type OCRConfig struct {
	Engine        string   `yaml:"engine"`
	DPI           int      `yaml:"dpi"`
	Languages     []string `yaml:"languages"`
	PageSegMode   int      `yaml:"page_seg_mode"`
	CharWhitelist string   `yaml:"char_whitelist"`
}

// PreviewConfig holds thumbnail settings.
type PreviewConfig struct {
	Enabled   *bool         `yaml:"enabled"`
	DPI       int           `yaml:"dpi"`
	MaxWidth  int           `yaml:"max_width"`
	MaxHeight int           `yaml:"max_height"`
	Timeout   time.Duration `yaml:"timeout"`
}

// EnabledOrDefault returns whether previews are rendered; defaults to true when unset.
func (p *PreviewConfig) EnabledOrDefault() bool {
	if p.Enabled != nil {
		return *p.Enabled
	}
	return true
}

// WatchConfig holds hot-folder settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	OutputDir   string   `yaml:"output_dir"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
	if cfg.Watch.OutputDir != "" {
		cfg.Watch.OutputDir = expandPath(cfg.Watch.OutputDir, configDir)
	}

	return &cfg, nil
}

// Default returns a config with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides the listener and debug settings from PORT, HOST and DEBUG.
// lookup is usually os.LookupEnv. Malformed values are reported and leave cfg unchanged.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup("HOST"); ok && v != "" {
		cfg.Server.Host = v
	}
	if v, ok := lookup("DEBUG"); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG %q: %w", v, err)
		}
		cfg.Debug = debug
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
