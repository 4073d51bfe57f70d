// Package render rasterizes PDF pages into images for OCR and previews.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
)

var (
	// ErrUnavailable is returned when no rasterizing backend can be used.
	ErrUnavailable = errors.New("rasterizer unavailable")
	// ErrEncrypted is returned when a document needs a password to open.
	ErrEncrypted = errors.New("document is password protected")
)

// Document is an opened, rasterizable document. Page indexes start at 0.
// Close releases every resource acquired by Open, including temporary files.
type Document interface {
	NumPage() int
	RenderPage(ctx context.Context, index int, dpi float64) (image.Image, error)
	Close() error
}

// Rasterizer opens documents for rendering. Implementations must be safe for
// concurrent use; each Open returns an independent Document.
type Rasterizer interface {
	Name() string
	Probe() error
	Open(ctx context.Context, data []byte) (Document, error)
}

// Kind selects a rasterizer backend.
type Kind string

const (
	// KindAuto prefers MuPDF and falls back to poppler's pdftoppm.
	KindAuto Kind = "auto"
	// KindMuPDF renders in-process through go-fitz. Requires CGO.
	KindMuPDF Kind = "mupdf"
	// KindPoppler shells out to pdftoppm.
	KindPoppler Kind = "pdftoppm"
)

// New returns the rasterizer for kind. With KindAuto the first backend whose
// probe succeeds wins; if none does, the MuPDF one is returned so that its
// probe error surfaces in the capability registry.
func New(kind string) (Rasterizer, error) {
	switch Kind(kind) {
	case KindAuto, "":
		mu := NewMuPDF()
		if mu.Probe() == nil {
			return mu, nil
		}
		pp := NewPoppler()
		if pp.Probe() == nil {
			return pp, nil
		}
		return unavailable{reasons: []error{mu.Probe(), pp.Probe()}}, nil
	case KindMuPDF:
		return NewMuPDF(), nil
	case KindPoppler:
		return NewPoppler(), nil
	default:
		return nil, fmt.Errorf("unknown rasterizer: %s (supported: auto, mupdf, pdftoppm)", kind)
	}
}

type unavailable struct {
	reasons []error
}

func (u unavailable) Name() string { return "none" }

func (u unavailable) Probe() error {
	return fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(u.reasons...))
}

func (u unavailable) Open(context.Context, []byte) (Document, error) {
	return nil, u.Probe()
}
