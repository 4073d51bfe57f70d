package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disablePDFConfigDir sync.Once

func pdfConfiguration() *model.Configuration {
	disablePDFConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// pdfToMarkdown walks every page's content stream and renders its text,
// gap-separated runs as table rows and image XObjects as image references.
func pdfToMarkdown(ctx context.Context, data []byte) (string, int, error) {
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), pdfConfiguration())
	if err != nil {
		return "", 0, classifyPDFError("structural", data, err)
	}
	var pages []string
	for nr := 1; nr <= pctx.PageCount; nr++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		if lines := pageMarkdown(pctx, nr); len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(pages, "\n\n"), pctx.PageCount, nil
}

// pageMarkdown returns the markdown lines of page nr. A page whose content
// stream cannot be read contributes only its images.
func pageMarkdown(pctx *model.Context, nr int) []string {
	var lines []string
	if r, err := pdfcpu.ExtractPageContent(pctx, nr); err == nil && r != nil {
		if data, err := io.ReadAll(r); err == nil {
			lines = withTableHeaders(contentLines(data))
		}
	}
	if pctx.Optimize != nil {
		for _, objNr := range pdfcpu.ImageObjNrs(pctx, nr) {
			lines = append(lines, fmt.Sprintf("![image](page-%d-obj-%d)", nr, objNr))
		}
	}
	return lines
}
