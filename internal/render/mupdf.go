//go:build cgo
// +build cgo

package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// MuPDFRasterizer renders pages in-process with MuPDF via go-fitz.
type MuPDFRasterizer struct{}

// NewMuPDF returns a MuPDF-backed rasterizer.
func NewMuPDF() *MuPDFRasterizer {
	return &MuPDFRasterizer{}
}

func (r *MuPDFRasterizer) Name() string { return string(KindMuPDF) }

// Probe always succeeds: the library is linked into the binary.
func (r *MuPDFRasterizer) Probe() error { return nil }

// Open parses data with MuPDF.
func (r *MuPDFRasterizer) Open(ctx context.Context, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		if errors.Is(err, fitz.ErrNeedsPassword) {
			return nil, ErrEncrypted
		}
		return nil, fmt.Errorf("mupdf open: %w", err)
	}
	return &mupdfDocument{doc: doc}, nil
}

type mupdfDocument struct {
	mu  sync.Mutex
	doc *fitz.Document
}

func (d *mupdfDocument) NumPage() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.NumPage()
}

func (d *mupdfDocument) RenderPage(ctx context.Context, index int, dpi float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	img, err := d.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, fmt.Errorf("mupdf render page %d: %w", index+1, err)
	}
	return img, nil
}

func (d *mupdfDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Close()
}
