// Package ocr recognizes text in rendered page images.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrUnavailable is returned when no recognition engine can be used.
var ErrUnavailable = errors.New("ocr engine unavailable")

// DefaultWhitelist restricts recognition to alphanumerics, space and basic punctuation.
const DefaultWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz .,!?;:()"

// PageSegSingleBlock treats the image as one uniform block of text.
const PageSegSingleBlock = 6

// Options tunes a single recognition call.
type Options struct {
	Languages     []string
	PageSegMode   int
	CharWhitelist string
	DPI           int
}

// DefaultOptions returns the settings used for scanned pages.
func DefaultOptions() Options {
	return Options{
		Languages:     []string{"eng"},
		PageSegMode:   PageSegSingleBlock,
		CharWhitelist: DefaultWhitelist,
		DPI:           300,
	}
}

// WithDefaults fills zero fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if len(o.Languages) == 0 {
		o.Languages = d.Languages
	}
	if o.PageSegMode == 0 {
		o.PageSegMode = d.PageSegMode
	}
	if o.CharWhitelist == "" {
		o.CharWhitelist = d.CharWhitelist
	}
	if o.DPI <= 0 {
		o.DPI = d.DPI
	}
	return o
}

func (o Options) language() string {
	return strings.Join(o.Languages, "+")
}

// Recognizer turns an image into text. Implementations are safe for
// concurrent use and hold no per-document state.
type Recognizer interface {
	Name() string
	Probe() error
	Recognize(ctx context.Context, img image.Image, opts Options) (string, error)
}

// Engine names accepted by New.
const (
	EngineAuto      = "auto"
	EngineGosseract = "gosseract"
	EngineCLI       = "cli"
)

// New returns the recognizer for engine. With EngineAuto the linked
// gosseract engine is preferred, then the tesseract binary.
func New(engine string) (Recognizer, error) {
	switch engine {
	case EngineAuto, "":
		g := NewGosseract()
		if g.Probe() == nil {
			return g, nil
		}
		c := NewCLI()
		if c.Probe() == nil {
			return c, nil
		}
		return unavailable{reasons: []error{g.Probe(), c.Probe()}}, nil
	case EngineGosseract:
		return NewGosseract(), nil
	case EngineCLI:
		return NewCLI(), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine: %s (supported: auto, gosseract, cli)", engine)
	}
}

type unavailable struct {
	reasons []error
}

func (u unavailable) Name() string { return "none" }

func (u unavailable) Probe() error {
	return fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(u.reasons...))
}

func (u unavailable) Recognize(context.Context, image.Image, Options) (string, error) {
	return "", u.Probe()
}
