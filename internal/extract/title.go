package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/diyagk01/blii-pdf-service/internal/sanitize"
)

const titleScanLines = 10

// Title returns the first of the leading lines that looks like a heading: a
// trimmed length strictly between 10 and 100 runes, not only digits, and not
// containing "Page". When no line qualifies the filename stem is used.
func Title(lines []string, fallback string) string {
	if len(lines) > titleScanLines {
		lines = lines[:titleScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		n := utf8.RuneCountInString(line)
		if n <= 10 || n >= 100 {
			continue
		}
		if isDigits(line) || strings.Contains(line, "Page") {
			continue
		}
		return line
	}
	return fallback
}

// titleFromText splits raw extractor output into lines, sanitizes each one and
// strips markdown heading markers before applying Title. Blank lines are kept
// so the scan window counts lines as they appear in the text.
func titleFromText(raw, fallback string) string {
	split := strings.SplitN(raw, "\n", titleScanLines+1)
	if len(split) > titleScanLines {
		split = split[:titleScanLines]
	}
	lines := make([]string, 0, len(split))
	for _, line := range split {
		line = sanitize.Clean(line)
		lines = append(lines, strings.TrimSpace(strings.TrimLeft(line, "#")))
	}
	return sanitize.Clean(Title(lines, fallback))
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
