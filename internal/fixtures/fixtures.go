// Package fixtures builds minimal documents of every supported format for tests.
package fixtures

import (
	"archive/zip"
	"bytes"

	"github.com/xuri/excelize/v2"
)

// Extensions lists the non-PDF formats Minimal can build.
var Extensions = []string{".txt", ".md", ".html", ".docx", ".xlsx", ".pptx", ".odp", ".ods"}

// Minimal returns a minimal file of the given extension containing text.
// Plain formats return the text itself.
func Minimal(ext, text string) []byte {
	switch ext {
	case ".html":
		return []byte("<html><body><h1>" + text + "</h1><p>" + text + "</p></body></html>")
	case ".docx":
		return Docx(text)
	case ".pptx":
		return Pptx(text)
	case ".odp":
		return Odp(text)
	case ".ods":
		return Ods(text)
	case ".xlsx":
		return Xlsx([][]string{{text}})
	case ".pdf":
		return PDF(Page{Lines: []string{text}})
	default:
		return []byte(text)
	}
}

// Docx returns a .docx with one paragraph per argument.
func Docx(paragraphs ...string) []byte {
	var body bytes.Buffer
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	return zipOf("word/document.xml",
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+body.String()+`</w:body></w:document>`)
}

// Pptx returns a .pptx with one slide per argument.
func Pptx(slides ...string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i, text := range slides {
		fw, _ := w.Create("ppt/slides/slide" + itoa(i+1) + ".xml")
		_, _ = fw.Write([]byte(`<p:sld xmlns:p="a" xmlns:a="b"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`))
	}
	_ = w.Close()
	return buf.Bytes()
}

// Odp returns an OpenDocument presentation with one text box.
func Odp(text string) []byte {
	return zipOf("content.xml",
		`<office:document><office:body><draw:page><draw:text-box><text:p>`+text+`</text:p></draw:text-box></draw:page></office:body></office:document>`)
}

// Ods returns an OpenDocument spreadsheet with one cell.
func Ods(text string) []byte {
	return zipOf("content.xml",
		`<office:document><office:body><table:table><table:table-row><table:table-cell><text:p>`+text+`</text:p></table:table-cell></table:table-row></table:table></office:body></office:document>`)
}

// Xlsx returns a workbook whose first sheet holds rows.
func Xlsx(rows [][]string) []byte {
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue("Sheet1", cell, v)
		}
	}
	var buf bytes.Buffer
	_, _ = f.WriteTo(&buf)
	return buf.Bytes()
}

func zipOf(name, content string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create(name)
	_, _ = fw.Write([]byte(content))
	_ = w.Close()
	return buf.Bytes()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}
