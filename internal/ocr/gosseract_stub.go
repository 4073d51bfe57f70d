//go:build !ocr
// +build !ocr

package ocr

import (
	"context"
	"errors"
	"image"
)

// GosseractRecognizer stub when built without the ocr tag (see gosseract.go).
type GosseractRecognizer struct{}

// NewGosseract returns a recognizer whose probe always fails.
func NewGosseract() *GosseractRecognizer {
	return &GosseractRecognizer{}
}

func (g *GosseractRecognizer) Name() string { return EngineGosseract }

func (g *GosseractRecognizer) Probe() error {
	return errors.New("gosseract engine requires the ocr build tag and libtesseract")
}

func (g *GosseractRecognizer) Recognize(context.Context, image.Image, Options) (string, error) {
	return "", ErrUnavailable
}
