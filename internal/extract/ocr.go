package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diyagk01/blii-pdf-service/internal/capability"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/diyagk01/blii-pdf-service/internal/ocr"
	"github.com/diyagk01/blii-pdf-service/internal/render"
	"go.uber.org/zap"
)

// OCR rasterizes each page and recognizes its text.
type OCR struct {
	rasterizer render.Rasterizer
	recognizer ocr.Recognizer
	opts       ocr.Options
	logger     *zap.Logger
}

// OCROption configures an OCR strategy.
type OCROption func(*OCR)

// WithOCROptions overrides the recognition settings.
func WithOCROptions(o ocr.Options) OCROption {
	return func(x *OCR) { x.opts = o.WithDefaults() }
}

// WithOCRLogger sets a logger for per-page progress.
func WithOCRLogger(l *zap.Logger) OCROption {
	return func(x *OCR) { x.logger = l }
}

// NewOCR returns the OCR strategy.
func NewOCR(r render.Rasterizer, rec ocr.Recognizer, opts ...OCROption) *OCR {
	x := &OCR{
		rasterizer: r,
		recognizer: rec,
		opts:       ocr.DefaultOptions(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *OCR) Method() string     { return MethodOCR }
func (x *OCR) Capability() string { return capability.OCR }

// Attempt renders pages one at a time so only one page image is held in memory.
func (x *OCR) Attempt(ctx context.Context, doc *models.Document) (*models.ExtractionResult, error) {
	if !isPDF(doc) {
		return nil, fmt.Errorf("ocr: %w: not a PDF", ErrUnsupportedOrCorrupt)
	}
	if x.rasterizer == nil || x.recognizer == nil {
		return nil, fmt.Errorf("ocr: %w", ErrBackendUnavailable)
	}
	rd, err := x.rasterizer.Open(ctx, doc.Data)
	if err != nil {
		switch {
		case errors.Is(err, render.ErrEncrypted):
			return nil, fmt.Errorf("ocr: %w", ErrEncrypted)
		case errors.Is(err, render.ErrUnavailable):
			return nil, fmt.Errorf("ocr: %w: %v", ErrBackendUnavailable, err)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		}
		return nil, classifyPDFError("ocr", doc.Data, err)
	}
	defer rd.Close()

	var buf strings.Builder
	numPages := rd.NumPage()
	for i := 0; i < numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := x.page(ctx, rd, i)
		if err != nil {
			return nil, err
		}
		x.logger.Debug("ocr page done", zap.Int("page", i+1), zap.Int("chars", len(text)))
		if text == "" {
			continue
		}
		buf.WriteString(pageMarker(i + 1))
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
	return newResult(MethodOCR, doc, output{text: buf.String(), pages: numPages})
}

func (x *OCR) page(ctx context.Context, rd render.Document, i int) (string, error) {
	img, err := rd.RenderPage(ctx, i, float64(x.opts.DPI))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ocr: render page %d: %w", i+1, err)
	}
	text, err := x.recognizer.Recognize(ctx, img, x.opts)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ocr: recognize page %d: %w", i+1, err)
	}
	return strings.TrimSpace(text), nil
}
