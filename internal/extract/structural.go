package extract

import (
	"context"
	"fmt"

	"github.com/diyagk01/blii-pdf-service/internal/capability"
	"github.com/diyagk01/blii-pdf-service/internal/models"
)

// Structural converts a whole document to markdown. It is the last resort
// for PDFs and the only strategy for office, HTML and text formats.
type Structural struct {
	html *htmlConverter
}

// NewStructural returns the markdown conversion strategy.
func NewStructural() *Structural {
	return &Structural{html: newHTMLConverter()}
}

func (s *Structural) Method() string     { return MethodStructural }
func (s *Structural) Capability() string { return capability.Structural }

// Attempt dispatches on the document format: PDF by magic bytes, everything
// else by filename extension.
func (s *Structural) Attempt(ctx context.Context, doc *models.Document) (*models.ExtractionResult, error) {
	md, pages, err := s.convert(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newResult(MethodStructural, doc, output{text: md, pages: pages, markup: true})
}

func (s *Structural) convert(ctx context.Context, doc *models.Document) (string, int, error) {
	if isPDF(doc) {
		return pdfToMarkdown(ctx, doc.Data)
	}
	switch ext := doc.Ext(); ext {
	case ".docx":
		md, err := docxMarkdown(doc.Data)
		return md, 1, err
	case ".pptx":
		return pptxMarkdown(doc.Data)
	case ".xlsx":
		return excelMarkdown(doc.Data)
	case ".odp":
		return odpMarkdown(doc.Data)
	case ".ods":
		return odsMarkdown(doc.Data)
	case ".odt", ".rtf":
		text, err := catText(doc.Data, ext)
		return text, 1, err
	case ".html", ".htm", ".xhtml":
		md, err := s.html.markdown(doc.Data)
		return md, 1, err
	case ".md", ".markdown", ".txt", ".text", ".rst", ".csv":
		return decodePlain(doc.Data), 1, nil
	default:
		return "", 0, fmt.Errorf("structural: %w: unsupported format %q", ErrUnsupportedOrCorrupt, ext)
	}
}

// SupportedExtensions lists the filename extensions Structural can convert.
func SupportedExtensions() []string {
	return []string{
		".pdf", ".docx", ".pptx", ".xlsx", ".odp", ".ods", ".odt", ".rtf",
		".html", ".htm", ".xhtml", ".md", ".markdown", ".txt", ".text", ".rst", ".csv",
	}
}
