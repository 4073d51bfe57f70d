// Package extract turns documents into text. Each strategy implements
// Extractor; Chain tries them in a fixed order and returns the first success.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/diyagk01/blii-pdf-service/internal/sanitize"
)

// Extractor is one extraction strategy. Attempt either returns a complete
// result or an error wrapping one of the package sentinels.
type Extractor interface {
	// Method is the tag reported in results, e.g. "native".
	Method() string
	// Capability names the registry entry that must be available for Attempt to run.
	Capability() string
	Attempt(ctx context.Context, doc *models.Document) (*models.ExtractionResult, error)
}

// output is a strategy's raw text before sanitization.
type output struct {
	text  string
	pages int
	// markup is set for structural output, whose tables and images are reported in metadata.
	markup bool
}

// newResult sanitizes out and derives title, confidence and metadata.
func newResult(method string, doc *models.Document, out output) (*models.ExtractionResult, error) {
	raw := sanitize.Normalize(out.text)
	content := strings.TrimSpace(raw)
	if content == "" {
		return nil, fmt.Errorf("%s: %w", method, ErrNoExtractableText)
	}
	md := models.Metadata{
		WordCount:        len(strings.Fields(content)),
		PageCount:        out.pages,
		ExtractionMethod: method,
		Filename:         doc.Filename,
	}
	if out.markup {
		md.HasTables = hasTables(out.text)
		md.HasImages = hasImages(out.text)
	}
	return &models.ExtractionResult{
		Method:     method,
		Title:      titleFromText(out.text, doc.Stem()),
		Content:    content,
		RawText:    raw,
		Metadata:   md,
		Confidence: Confidence(method),
	}, nil
}

// pageMarker opens the text of page n (1-based) in native and OCR output.
func pageMarker(n int) string {
	return fmt.Sprintf("\n--- Page %d ---\n", n)
}
