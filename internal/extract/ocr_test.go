package extract

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/diyagk01/blii-pdf-service/internal/fixtures"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/diyagk01/blii-pdf-service/internal/ocr"
	"github.com/diyagk01/blii-pdf-service/internal/render"
)

// fakeRasterizer renders page i as an image i+1 pixels wide so that the
// recognizer can tell pages apart.
type fakeRasterizer struct {
	pages   int
	openErr error
	closed  bool
}

func (f *fakeRasterizer) Name() string { return "fake" }
func (f *fakeRasterizer) Probe() error { return nil }

func (f *fakeRasterizer) Open(ctx context.Context, data []byte) (render.Document, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeRaster{r: f}, nil
}

type fakeRaster struct {
	r *fakeRasterizer
}

func (d *fakeRaster) NumPage() int { return d.r.pages }

func (d *fakeRaster) RenderPage(ctx context.Context, index int, dpi float64) (image.Image, error) {
	if dpi != 300 {
		return nil, errors.New("unexpected dpi")
	}
	return image.NewGray(image.Rect(0, 0, index+1, 1)), nil
}

func (d *fakeRaster) Close() error {
	d.r.closed = true
	return nil
}

type fakeRecognizer struct {
	pages []string
	opts  ocr.Options
}

func (f *fakeRecognizer) Name() string { return "fake" }
func (f *fakeRecognizer) Probe() error { return nil }

func (f *fakeRecognizer) Recognize(ctx context.Context, img image.Image, opts ocr.Options) (string, error) {
	f.opts = opts
	return f.pages[img.Bounds().Dx()-1], nil
}

func TestOCR_pages(t *testing.T) {
	r := &fakeRasterizer{pages: 3}
	rec := &fakeRecognizer{pages: []string{"  Scanned invoice number 42  ", "", "Total due 100"}}
	doc := models.NewDocument("scan.pdf", fixtures.TextPDF(""))
	res, err := NewOCR(r, rec).Attempt(context.Background(), doc)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if !r.closed {
		t.Error("rendered document not closed")
	}
	if res.Method != MethodOCR || res.Confidence != 0.85 {
		t.Errorf("method/confidence: %q %v", res.Method, res.Confidence)
	}
	if res.Metadata.PageCount != 3 {
		t.Errorf("page_count: got %d", res.Metadata.PageCount)
	}
	want := "--- Page 1 --- Scanned invoice number 42 --- Page 3 --- Total due 100"
	if res.Content != want {
		t.Errorf("content: got %q, want %q", res.Content, want)
	}
	if res.Title != "Scanned invoice number 42" {
		t.Errorf("title: got %q", res.Title)
	}
	if rec.opts.PageSegMode != 6 || rec.opts.CharWhitelist != ocr.DefaultWhitelist {
		t.Errorf("recognizer options: %+v", rec.opts)
	}
}

func TestOCR_nothingRecognized(t *testing.T) {
	r := &fakeRasterizer{pages: 2}
	rec := &fakeRecognizer{pages: []string{" ", "\n"}}
	_, err := NewOCR(r, rec).Attempt(context.Background(), models.NewDocument("blank.pdf", fixtures.TextPDF("", "")))
	if !errors.Is(err, ErrNoExtractableText) {
		t.Fatalf("got %v", err)
	}
	if !r.closed {
		t.Error("rendered document not closed on failure")
	}
}

func TestOCR_openErrors(t *testing.T) {
	tests := []struct {
		openErr error
		want    error
	}{
		{render.ErrEncrypted, ErrEncrypted},
		{render.ErrUnavailable, ErrBackendUnavailable},
		{errors.New("bad xref"), ErrUnsupportedOrCorrupt},
	}
	for _, tt := range tests {
		r := &fakeRasterizer{openErr: tt.openErr}
		_, err := NewOCR(r, &fakeRecognizer{}).Attempt(context.Background(), models.NewDocument("x.pdf", fixtures.TextPDF("")))
		if !errors.Is(err, tt.want) {
			t.Errorf("open error %v: got %v, want %v", tt.openErr, err, tt.want)
		}
	}
}

func TestOCR_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeRasterizer{pages: 1}
	_, err := NewOCR(r, &fakeRecognizer{pages: []string{"text"}}).Attempt(ctx, models.NewDocument("x.pdf", fixtures.TextPDF("")))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}

func TestOCR_notPDF(t *testing.T) {
	_, err := NewOCR(&fakeRasterizer{}, &fakeRecognizer{}).Attempt(context.Background(), models.NewDocument("a.docx", fixtures.Docx("x")))
	if !errors.Is(err, ErrUnsupportedOrCorrupt) {
		t.Fatalf("got %v", err)
	}
}
