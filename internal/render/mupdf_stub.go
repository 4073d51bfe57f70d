//go:build !cgo
// +build !cgo

package render

import (
	"context"
	"errors"
)

// MuPDFRasterizer stub type when built without CGO (see mupdf.go for the real implementation).
type MuPDFRasterizer struct{}

// NewMuPDF returns a rasterizer whose probe fails when built without CGO.
func NewMuPDF() *MuPDFRasterizer {
	return &MuPDFRasterizer{}
}

func (r *MuPDFRasterizer) Name() string { return string(KindMuPDF) }

func (r *MuPDFRasterizer) Probe() error {
	return errors.New("MuPDF rasterizer requires CGO; build with CGO_ENABLED=1")
}

func (r *MuPDFRasterizer) Open(context.Context, []byte) (Document, error) {
	return nil, ErrUnavailable
}
