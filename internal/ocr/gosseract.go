//go:build ocr
// +build ocr

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"

	"github.com/otiai10/gosseract/v2"
)

// GosseractRecognizer runs libtesseract in-process through gosseract.
type GosseractRecognizer struct {
	clientFactory func() *gosseract.Client
}

// NewGosseract returns a recognizer backed by libtesseract.
func NewGosseract() *GosseractRecognizer {
	return &GosseractRecognizer{clientFactory: gosseract.NewClient}
}

func (g *GosseractRecognizer) Name() string { return EngineGosseract }

// Probe checks that libtesseract finds trained language data.
func (g *GosseractRecognizer) Probe() error {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return fmt.Errorf("tesseract languages: %w", err)
	}
	if len(langs) == 0 {
		return fmt.Errorf("tesseract has no trained language data")
	}
	return nil
}

// Recognize encodes img as PNG and runs one tesseract pass over it. A client
// is created per call; clients are not safe for concurrent use.
func (g *GosseractRecognizer) Recognize(ctx context.Context, img image.Image, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	opts = opts.WithDefaults()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode page image: %w", err)
	}
	c := g.clientFactory()
	defer c.Close()
	if err := c.SetLanguage(opts.Languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetWhitelist(opts.CharWhitelist); err != nil {
		return "", fmt.Errorf("set whitelist: %w", err)
	}
	if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(opts.DPI)); err != nil {
		return "", fmt.Errorf("set dpi: %w", err)
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
