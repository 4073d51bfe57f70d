package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diyagk01/blii-pdf-service/internal/capability"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/ledongthuc/pdf"
)

// Native reads the embedded text layer of a PDF.
type Native struct{}

// NewNative returns the text-layer strategy.
func NewNative() *Native {
	return &Native{}
}

func (n *Native) Method() string     { return MethodNative }
func (n *Native) Capability() string { return capability.NativeText }

// Attempt concatenates the text of every non-empty page, each preceded by a
// page marker. A PDF without a text layer fails with ErrNoExtractableText.
func (n *Native) Attempt(ctx context.Context, doc *models.Document) (*models.ExtractionResult, error) {
	if !isPDF(doc) {
		return nil, fmt.Errorf("native: %w: not a PDF", ErrUnsupportedOrCorrupt)
	}
	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return nil, classifyPDFError("native", doc.Data, err)
	}
	var buf strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("native: page %d: %w: %v", i, ErrUnsupportedOrCorrupt, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		buf.WriteString(pageMarker(i))
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
	return newResult(MethodNative, doc, output{text: buf.String(), pages: numPages})
}

// classifyPDFError maps a PDF backend error onto ErrEncrypted or ErrUnsupportedOrCorrupt.
func classifyPDFError(method string, data []byte, err error) error {
	if errors.Is(err, pdf.ErrInvalidPassword) || looksEncrypted(data) {
		return fmt.Errorf("%s: %w: %v", method, ErrEncrypted, err)
	}
	return fmt.Errorf("%s: %w: %v", method, ErrUnsupportedOrCorrupt, err)
}
