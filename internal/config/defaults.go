package config

import "time"

// DefaultExtensions are the file types picked up by the hot folder.
var DefaultExtensions = []string{".pdf", ".docx", ".pptx", ".xlsx", ".odp", ".ods", ".odt", ".rtf", ".html", ".md", ".txt"}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 50 << 20
	}
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.Fetch.MaxAttempts == 0 {
		cfg.Fetch.MaxAttempts = 3
	}
	if cfg.Fetch.MaxBytes == 0 {
		cfg.Fetch.MaxBytes = 100 << 20
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "Mozilla/5.0 (compatible; blii-pdf-service/1.0)"
	}
	if cfg.Extraction.StrategyTimeout == 0 {
		cfg.Extraction.StrategyTimeout = 2 * time.Minute
	}
	if cfg.Extraction.Rasterizer == "" {
		cfg.Extraction.Rasterizer = "auto"
	}
	if cfg.Extraction.OCR.Engine == "" {
		cfg.Extraction.OCR.Engine = "auto"
	}
	if cfg.Extraction.OCR.DPI == 0 {
		cfg.Extraction.OCR.DPI = 300
	}
	if len(cfg.Extraction.OCR.Languages) == 0 {
		cfg.Extraction.OCR.Languages = []string{"eng"}
	}
	if cfg.Extraction.OCR.PageSegMode == 0 {
		cfg.Extraction.OCR.PageSegMode = 6
	}
	if cfg.Preview.DPI == 0 {
		cfg.Preview.DPI = 144
	}
	if cfg.Preview.MaxWidth == 0 {
		cfg.Preview.MaxWidth = 300
	}
	if cfg.Preview.MaxHeight == 0 {
		cfg.Preview.MaxHeight = 400
	}
	if cfg.Preview.Timeout == 0 {
		cfg.Preview.Timeout = 30 * time.Second
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = append([]string(nil), DefaultExtensions...)
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
