package extract

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// hasTables reports whether any line of markup contains a column delimiter.
func hasTables(markup string) bool {
	for _, line := range strings.Split(markup, "\n") {
		if strings.Contains(line, "|") {
			return true
		}
	}
	return false
}

// hasImages reports whether markup embeds an image, either as a markdown
// image node or as a raw <img> tag.
func hasImages(markup string) bool {
	if strings.Contains(strings.ToLower(markup), "<img") {
		return true
	}
	src := []byte(markup)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindImage {
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

// tableRow renders cells as one markdown table row.
func tableRow(cells []string) string {
	for i, c := range cells {
		c = strings.ReplaceAll(strings.TrimSpace(c), "|", `\|`)
		c = strings.Join(strings.Fields(c), " ")
		cells[i] = c
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

func isTableRow(line string) bool {
	return strings.HasPrefix(line, "| ") && strings.HasSuffix(line, " |")
}

// withTableHeaders inserts the delimiter row after the first row of every
// run of table rows, and a blank line before the run.
func withTableHeaders(lines []string) []string {
	out := make([]string, 0, len(lines)+4)
	for i, line := range lines {
		starts := isTableRow(line) && (i == 0 || !isTableRow(lines[i-1]))
		if starts && len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, line)
		if starts {
			cols := strings.Count(line, " | ") + 1
			out = append(out, "|"+strings.Repeat(" --- |", cols))
		}
	}
	return out
}
