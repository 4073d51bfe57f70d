package pipeline

import (
	"errors"
	"fmt"

	"github.com/diyagk01/blii-pdf-service/internal/capability"
	"github.com/diyagk01/blii-pdf-service/internal/config"
	"github.com/diyagk01/blii-pdf-service/internal/extract"
	"github.com/diyagk01/blii-pdf-service/internal/ocr"
	"github.com/diyagk01/blii-pdf-service/internal/preview"
	"github.com/diyagk01/blii-pdf-service/internal/render"
	"go.uber.org/zap"
)

// ErrDisabled marks a backend switched off in the configuration.
var ErrDisabled = errors.New("disabled by configuration")

// Build probes every backend named by cfg and returns a ready Service.
// Backends that fail their probe are recorded as unavailable; only an invalid
// backend name in cfg is an error.
func Build(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rasterizer, err := render.New(cfg.Extraction.Rasterizer)
	if err != nil {
		return nil, fmt.Errorf("rasterizer: %w", err)
	}
	recognizer, err := ocr.New(cfg.Extraction.OCR.Engine)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	native := extract.NewNative()
	ocrStrategy := extract.NewOCR(rasterizer, recognizer,
		extract.WithOCROptions(ocr.Options{
			Languages:     cfg.Extraction.OCR.Languages,
			PageSegMode:   cfg.Extraction.OCR.PageSegMode,
			CharWhitelist: cfg.Extraction.OCR.CharWhitelist,
			DPI:           cfg.Extraction.OCR.DPI,
		}),
		extract.WithOCRLogger(logger),
	)
	structural := extract.NewStructural()

	registry := capability.Detect(logger, Probes(cfg, rasterizer, recognizer)...)
	chain := extract.NewChain(registry,
		[]extract.Extractor{native, ocrStrategy, structural},
		extract.WithLogger(logger),
		extract.WithStrategyTimeout(cfg.Extraction.StrategyTimeout),
	)

	opts := []Option{WithLogger(logger), WithPreviewTimeout(cfg.Preview.Timeout)}
	if cfg.Preview.EnabledOrDefault() {
		opts = append(opts, WithPreview(preview.New(rasterizer,
			preview.WithDPI(float64(cfg.Preview.DPI)),
			preview.WithMaxSize(cfg.Preview.MaxWidth, cfg.Preview.MaxHeight),
		)))
	}
	return New(registry, chain, opts...), nil
}

// Probes returns the capability checks for cfg. OCR needs both a rasterizer
// and a recognizer; the preview only needs the rasterizer.
func Probes(cfg *config.Config, rasterizer render.Rasterizer, recognizer ocr.Recognizer) []capability.Probe {
	disabled := func(method string, check func() error) func() error {
		return func() error {
			if cfg.Extraction.IsDisabled(method) {
				return ErrDisabled
			}
			if check == nil {
				return nil
			}
			return check()
		}
	}
	previewCheck := rasterizer.Probe
	if !cfg.Preview.EnabledOrDefault() {
		previewCheck = func() error { return ErrDisabled }
	}
	return []capability.Probe{
		{Name: capability.NativeText, Check: disabled(extract.MethodNative, nil)},
		{Name: capability.OCR, Check: disabled(extract.MethodOCR, func() error {
			if err := rasterizer.Probe(); err != nil {
				return err
			}
			return recognizer.Probe()
		})},
		{Name: capability.Structural, Check: disabled(extract.MethodStructural, nil)},
		{Name: capability.Preview, Check: previewCheck},
	}
}
