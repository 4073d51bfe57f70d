// Package sanitize normalizes extracted document text so it can be stored and
// displayed safely. Every extraction strategy runs its output through Clean.
package sanitize

import (
	"regexp"
	"strings"
)

// ws is the whitespace class shared by every collapsing step. Steps 5-7 must
// agree on it or Clean stops being idempotent.
const ws = `[\s\p{Z}\x{85}]`

var (
	whitespaceRun    = regexp.MustCompile(ws + `+`)
	repeatedMarks    = regexp.MustCompile(`([.!?])(?:` + ws + `*[.!?])+`)
	spaceBeforeMarks = regexp.MustCompile(ws + `+([.!?,:;])`)
)

// Clean applies the full normalization: character removal, whitespace and
// punctuation collapsing, then trimming. Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	return strings.TrimSpace(Normalize(s))
}

// Normalize is Clean without the final trim. Its output is what results expose
// as raw text.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		if dropped(r) {
			return -1
		}
		return r
	}, s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = repeatedMarks.ReplaceAllString(s, "$1")
	return spaceBeforeMarks.ReplaceAllString(s, "$1")
}

// dropped reports whether r is removed outright: NUL, ASCII controls other than
// tab/newline/carriage return, DEL, the replacement character, the private use
// areas (BMP and supplementary planes 15 and 16) and the specials block. Invalid UTF-8 decodes to U+FFFD and goes too.
func dropped(r rune) bool {
	switch {
	case r == 0:
		return true
	case r < 0x20:
		return r != '\t' && r != '\n' && r != '\r'
	case r == 0x7f:
		return true
	case r >= 0xE000 && r <= 0xF8FF:
		return true
	case r >= 0xF0000 && r <= 0x10FFFF:
		return true
	case r >= 0xFFF0 && r <= 0xFFFF:
		return true
	}
	return false
}
