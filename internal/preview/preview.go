// Package preview renders a small PNG thumbnail of a document's first page.
package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/diyagk01/blii-pdf-service/internal/render"
	"github.com/diyagk01/blii-pdf-service/pkg/utils"
	"golang.org/x/image/draw"
)

// Defaults: page 1 at 2x zoom, fit inside 300x400.
const (
	DefaultDPI       = 144
	DefaultMaxWidth  = 300
	DefaultMaxHeight = 400
)

// DataURIPrefix starts every preview returned by Render.
const DataURIPrefix = "data:image/png;base64,"

// ErrNoPages is returned for a document without pages.
var ErrNoPages = errors.New("document has no pages")

// Renderer produces first-page thumbnails.
type Renderer struct {
	rasterizer render.Rasterizer
	dpi        float64
	maxWidth   int
	maxHeight  int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDPI sets the resolution page 1 is rasterized at.
func WithDPI(dpi float64) Option {
	return func(r *Renderer) {
		if dpi > 0 {
			r.dpi = dpi
		}
	}
}

// WithMaxSize sets the bounding box of the thumbnail.
func WithMaxSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.maxWidth, r.maxHeight = width, height
		}
	}
}

// New returns a Renderer that rasterizes with r.
func New(r render.Rasterizer, opts ...Option) *Renderer {
	p := &Renderer{
		rasterizer: r,
		dpi:        DefaultDPI,
		maxWidth:   DefaultMaxWidth,
		maxHeight:  DefaultMaxHeight,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render returns page 1 of data as a PNG data URI.
func (p *Renderer) Render(ctx context.Context, data []byte) (uri string, err error) {
	defer func() {
		if r := recover(); r != nil {
			uri, err = "", fmt.Errorf("render preview: panic: %v", r)
		}
	}()
	if p.rasterizer == nil {
		return "", render.ErrUnavailable
	}
	doc, err := p.rasterizer.Open(ctx, data)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()
	if doc.NumPage() < 1 {
		return "", ErrNoPages
	}
	img, err := doc.RenderPage(ctx, 0, p.dpi)
	if err != nil {
		return "", fmt.Errorf("render page 1: %w", err)
	}
	return Encode(Thumbnail(img, p.maxWidth, p.maxHeight))
}

// Thumbnail shrinks img to fit inside maxWidthxmaxHeight. Images that
// already fit are returned as is; images are never enlarged.
func Thumbnail(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	w, h := utils.FitWithin(b.Dx(), b.Dy(), maxWidth, maxHeight)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode returns img as a base64 PNG data URI.
func Encode(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
