package extract

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// htmlConverter strips scripts and event handlers before converting HTML to
// markdown. It is safe for concurrent use.
type htmlConverter struct {
	policy *bluemonday.Policy
	md     *converter.Converter
}

func newHTMLConverter() *htmlConverter {
	return &htmlConverter{
		policy: bluemonday.UGCPolicy(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (h *htmlConverter) markdown(content []byte) (string, error) {
	clean := h.policy.SanitizeBytes(content)
	out, err := h.md.ConvertString(decodePlain(clean))
	if err != nil {
		return "", fmt.Errorf("html: %w: %v", ErrUnsupportedOrCorrupt, err)
	}
	return strings.TrimSpace(out), nil
}
