package fixtures

import (
	"bytes"
	"fmt"
	"strings"
)

// Page describes one page of a generated PDF.
type Page struct {
	// Lines are drawn top to bottom, one Tj each.
	Lines []string
	// Rows are drawn as TJ arrays whose cells are separated by wide gaps.
	Rows [][]string
	// Image paints a 1x1 grayscale image XObject on the page.
	Image bool
}

// PDF returns a minimal, valid PDF with one Helvetica font and the given pages.
// A page without lines or rows has an empty text layer, like a scan.
func PDF(pages ...Page) []byte {
	if len(pages) == 0 {
		pages = []Page{{}}
	}
	var objs []string
	add := func(body string) int {
		objs = append(objs, body)
		return len(objs)
	}
	catalog := add("")
	pagesObj := add("")
	font := add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var kids []string
	for _, p := range pages {
		content := pageContent(p)
		contentObj := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		resources := fmt.Sprintf("/Font << /F1 %d 0 R >>", font)
		if p.Image {
			img := add("<< /Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8 /Length 1 >>\nstream\n\xff\nendstream")
			resources += fmt.Sprintf(" /XObject << /Im1 %d 0 R >>", img)
		}
		page := add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << %s >> /Contents %d 0 R >>",
			pagesObj, resources, contentObj))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}
	objs[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj)
	objs[pagesObj-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, catalog, xref)
	return buf.Bytes()
}

// TextPDF returns a PDF with one page per argument; newlines split lines.
func TextPDF(pages ...string) []byte {
	ps := make([]Page, len(pages))
	for i, text := range pages {
		if text != "" {
			ps[i].Lines = strings.Split(text, "\n")
		}
	}
	return PDF(ps...)
}

func pageContent(p Page) string {
	var b strings.Builder
	if p.Image {
		b.WriteString("q 100 0 0 100 72 500 cm /Im1 Do Q\n")
	}
	if len(p.Lines) == 0 && len(p.Rows) == 0 {
		return b.String()
	}
	b.WriteString("BT\n/F1 12 Tf\n16 TL\n72 720 Td\n")
	for i, line := range p.Lines {
		if i > 0 {
			b.WriteString("T*\n")
		}
		fmt.Fprintf(&b, "(%s) Tj\n", escape(line))
	}
	for _, row := range p.Rows {
		b.WriteString("T*\n[")
		for i, cell := range row {
			if i > 0 {
				b.WriteString(" -4000 ")
			}
			fmt.Fprintf(&b, "(%s)", escape(cell))
		}
		b.WriteString("] TJ\n")
	}
	b.WriteString("ET")
	return b.String()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
