package extract

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Horizontal displacements in TJ arrays are in thousandths of an em.
// Wider gaps than cellGap separate table cells; wider than wordGap, words.
const (
	cellGap = 1500
	wordGap = 200
)

type operandKind int

const (
	kindOther operandKind = iota
	kindString
	kindNumber
	kindArray
)

type operand struct {
	kind operandKind
	str  string
	num  float64
	arr  []operand
}

// contentLines interprets the text operators of a decoded page content
// stream and returns its text as lines. TJ arrays with wide gaps between
// runs become markdown table rows.
func contentLines(data []byte) []string {
	var p textLines
	var stack []operand
	lx := &lexer{data: data}
	for {
		op, arg, ok := lx.next()
		if !ok {
			break
		}
		if op == "" {
			stack = append(stack, arg)
			continue
		}
		switch op {
		case "BT", "ET", "T*", "Tm":
			p.newline()
		case "Tj":
			p.write(lastString(stack))
		case "'", `"`:
			p.newline()
			p.write(lastString(stack))
		case "TJ":
			p.showArray(lastArray(stack))
		case "Td", "TD":
			if n := len(stack); n >= 2 {
				if stack[n-1].num != 0 {
					p.newline()
				} else if stack[n-2].num != 0 {
					p.space()
				}
			}
		}
		stack = stack[:0]
	}
	p.newline()
	return p.lines
}

type textLines struct {
	lines []string
	cur   strings.Builder
}

func (p *textLines) write(s string) {
	p.cur.WriteString(s)
}

func (p *textLines) space() {
	s := p.cur.String()
	if s != "" && !strings.HasSuffix(s, " ") {
		p.cur.WriteByte(' ')
	}
}

func (p *textLines) newline() {
	if line := strings.TrimSpace(p.cur.String()); line != "" {
		p.lines = append(p.lines, line)
	}
	p.cur.Reset()
}

func (p *textLines) showArray(arr []operand) {
	cells := []string{""}
	for _, el := range arr {
		switch el.kind {
		case kindString:
			cells[len(cells)-1] += el.str
		case kindNumber:
			switch {
			case el.num <= -cellGap:
				cells = append(cells, "")
			case el.num <= -wordGap:
				cells[len(cells)-1] += " "
			}
		}
	}
	if len(cells) == 1 {
		p.write(cells[0])
		return
	}
	p.newline()
	p.lines = append(p.lines, tableRow(cells))
}

func lastString(stack []operand) string {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].kind == kindString {
			return stack[i].str
		}
	}
	return ""
}

func lastArray(stack []operand) []operand {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].kind == kindArray {
			return stack[i].arr
		}
	}
	return nil
}

// lexer tokenizes a content stream. It understands enough of the syntax to
// skip dictionaries, inline images and comments without losing its place.
type lexer struct {
	data []byte
	pos  int
}

// next returns either an operator or an operand. ok is false at the end of data.
func (l *lexer) next() (op string, arg operand, ok bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return "", operand{}, false
	}
	c := l.data[l.pos]
	switch {
	case c == '(':
		return "", operand{kind: kindString, str: decodeText(l.literal())}, true
	case c == '<' && l.peek(1) == '<':
		l.skipDict()
		return "", operand{}, true
	case c == '<':
		return "", operand{kind: kindString, str: decodeText(l.hex())}, true
	case c == '[':
		l.pos++
		return "", operand{kind: kindArray, arr: l.array()}, true
	case c == ']' || c == '{' || c == '}' || c == '>' || c == ')':
		l.pos++
		return "", operand{}, true
	case c == '/':
		l.pos++
		return "", operand{str: l.regular()}, true
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		n, _ := strconv.ParseFloat(l.regular(), 64)
		return "", operand{kind: kindNumber, num: n}, true
	}
	word := l.regular()
	if word == "" {
		l.pos++
		return "", operand{}, true
	}
	if word == "ID" {
		l.skipInlineImage()
	}
	return word, operand{}, true
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		l.pos++
	}
}

func (l *lexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) array() []operand {
	var arr []operand
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return arr
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return arr
		}
		op, arg, ok := l.next()
		if !ok {
			return arr
		}
		if op == "" {
			arr = append(arr, arg)
		}
	}
}

func (l *lexer) skipDict() {
	depth := 0
	for l.pos < len(l.data) {
		switch {
		case l.data[l.pos] == '<' && l.peek(1) == '<':
			depth++
			l.pos += 2
		case l.data[l.pos] == '>' && l.peek(1) == '>':
			depth--
			l.pos += 2
			if depth == 0 {
				return
			}
		case l.data[l.pos] == '(':
			l.literal()
		default:
			l.pos++
		}
	}
}

// skipInlineImage advances past the binary data of a BI ... ID ... EI image.
func (l *lexer) skipInlineImage() {
	for l.pos+2 < len(l.data) {
		if isSpace(l.data[l.pos]) && l.data[l.pos+1] == 'E' && l.data[l.pos+2] == 'I' &&
			(l.pos+3 == len(l.data) || isSpace(l.data[l.pos+3]) || isDelim(l.data[l.pos+3])) {
			l.pos += 3
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

// literal reads a (string) with balanced parentheses and escape sequences.
func (l *lexer) literal() []byte {
	l.pos++
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return out
			}
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; k++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

func (l *lexer) hex() []byte {
	l.pos++
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

// decodeText interprets a PDF string as UTF-16BE when it carries a byte
// order mark and as Latin-1 otherwise.
func decodeText(b []byte) string {
	if bytes.HasPrefix(b, []byte{0xfe, 0xff}) {
		b = b[2:]
		u := make([]uint16, 0, len(b)/2)
		for i := 0; i+1 < len(b); i += 2 {
			u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u))
	}
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
