package extract

import (
	"html"
	"strings"
	"unicode/utf8"
)

// decodePlain returns content as string, replacing invalid UTF-8 sequences
// with the replacement character.
func decodePlain(content []byte) string {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "\ufffd")
	}
	return string(content)
}

// unescapeXML resolves the predefined XML entities and numeric references.
func unescapeXML(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return html.UnescapeString(s)
}
