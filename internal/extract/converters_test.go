package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/diyagk01/blii-pdf-service/internal/fixtures"
)

// docxWithContentTypes returns a .docx whose [Content_Types].xml points to a custom document path.
func docxWithContentTypes(text, docPath string, reversed bool) []byte {
	override := `<Override PartName="/` + docPath + `" ContentType="` + docxMainContentType + `"/>`
	if reversed {
		override = `<Override ContentType="` + docxMainContentType + `" PartName="/` + docPath + `"/>`
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` + override + `</Types>`))
	fw, _ := w.Create(docPath)
	_, _ = fw.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func zipWith(files map[string]string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, _ := w.Create(name)
		_, _ = fw.Write([]byte(content))
	}
	_ = w.Close()
	return buf.Bytes()
}

func TestDocxMarkdown(t *testing.T) {
	got, err := docxMarkdown(fixtures.Docx("First paragraph", "Second &amp; last"))
	if err != nil {
		t.Fatalf("docxMarkdown: %v", err)
	}
	if got != "First paragraph\nSecond & last" {
		t.Errorf("got %q", got)
	}
}

func TestDocxMarkdown_contentTypes(t *testing.T) {
	for _, reversed := range []bool{false, true} {
		got, err := docxMarkdown(docxWithContentTypes("Content from document2", "word/document2.xml", reversed))
		if err != nil {
			t.Fatalf("docxMarkdown: %v", err)
		}
		if got != "Content from document2" {
			t.Errorf("reversed=%v: got %q", reversed, got)
		}
	}
}

func TestDocxMarkdown_headingsTablesImages(t *testing.T) {
	body := `<w:p w:rsidR="00A1"><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Results</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Score</w:t></w:r></w:p></w:tc></w:tr>` +
		`<w:tr><w:tc><w:p><w:r><w:t>Ada</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>9</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:r><w:drawing><wp:inline/></w:drawing></w:r></w:p>`
	content := zipWith(map[string]string{"word/document.xml": `<w:document><w:body>` + body + `</w:body></w:document>`})
	got, err := docxMarkdown(content)
	if err != nil {
		t.Fatalf("docxMarkdown: %v", err)
	}
	want := "## Results\n\n| Name | Score |\n| --- | --- |\n| Ada | 9 |\n![image](docx-image-1)"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
	if !hasTables(got) || !hasImages(got) {
		t.Errorf("hasTables=%v hasImages=%v", hasTables(got), hasImages(got))
	}
}

func TestDocxMarkdown_invalid(t *testing.T) {
	if _, err := docxMarkdown([]byte("not a zip")); !errors.Is(err, ErrUnsupportedOrCorrupt) {
		t.Errorf("not a zip: got %v", err)
	}
	if _, err := docxMarkdown(zipWith(map[string]string{"other.xml": ""})); !errors.Is(err, ErrUnsupportedOrCorrupt) {
		t.Errorf("missing document: got %v", err)
	}
}

func TestPptxMarkdown_slideOrder(t *testing.T) {
	content := zipWith(map[string]string{
		"ppt/slides/slide10.xml": `<p:sld><a:p><a:r><a:t>Tenth</a:t></a:r></a:p></p:sld>`,
		"ppt/slides/slide2.xml":  `<p:sld><a:p><a:r><a:t>Second</a:t></a:r></a:p><p:pic></p:pic></p:sld>`,
		"ppt/slides/slide1.xml":  `<p:sld><a:p><a:r><a:t>First </a:t></a:r><a:r><a:t>slide</a:t></a:r></a:p></p:sld>`,
		"ppt/slides/other.xml":   `<p:sld><a:p><a:r><a:t>Ignored</a:t></a:r></a:p></p:sld>`,
	})
	got, n, err := pptxMarkdown(content)
	if err != nil {
		t.Fatalf("pptxMarkdown: %v", err)
	}
	if n != 3 {
		t.Errorf("slides: got %d, want 3", n)
	}
	want := "## Slide 1\nFirst slide\n\n## Slide 2\nSecond\n![image](slide-2-pic-1)\n\n## Slide 3\nTenth"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
	if strings.Contains(got, "Ignored") {
		t.Error("non-slide parts should be ignored")
	}
}

func TestPptxMarkdown_empty(t *testing.T) {
	got, n, err := pptxMarkdown(zipWith(map[string]string{"docProps/core.xml": ""}))
	if err != nil {
		t.Fatalf("pptxMarkdown: %v", err)
	}
	if got != "" || n != 0 {
		t.Errorf("got %q, %d", got, n)
	}
}

func TestExcelMarkdown(t *testing.T) {
	got, sheets, err := excelMarkdown(fixtures.Xlsx([][]string{{"Title"}, {"Value 1", "Value 2"}}))
	if err != nil {
		t.Fatalf("excelMarkdown: %v", err)
	}
	if sheets != 1 {
		t.Errorf("sheets: got %d", sheets)
	}
	want := "## Sheet1\n\n| Title |  |\n| --- | --- |\n| Value 1 | Value 2 |"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestExcelMarkdown_invalid(t *testing.T) {
	if _, _, err := excelMarkdown([]byte("nope")); !errors.Is(err, ErrUnsupportedOrCorrupt) {
		t.Errorf("got %v", err)
	}
}

func TestOdpMarkdown(t *testing.T) {
	content := zipWith(map[string]string{"content.xml": `<office:document><office:body>` +
		`<draw:page draw:name="p1"><text:h text:outline-level="2">Slide title</text:h><text:p>Body <text:span>text</text:span></text:p></draw:page>` +
		`<draw:page><draw:frame><draw:image xlink:href="Pictures/a.png"/></draw:frame></draw:page>` +
		`</office:body></office:document>`})
	got, n, err := odpMarkdown(content)
	if err != nil {
		t.Fatalf("odpMarkdown: %v", err)
	}
	if n != 2 {
		t.Errorf("pages: got %d", n)
	}
	want := "## Slide 1\n## Slide title\nBody text\n\n## Slide 2\n![image](slide-2-image-1)"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestOdpMarkdown_contentNotFound(t *testing.T) {
	if _, _, err := odpMarkdown(zipWith(map[string]string{"other.xml": ""})); !errors.Is(err, ErrUnsupportedOrCorrupt) {
		t.Errorf("got %v", err)
	}
}

func TestOdsMarkdown(t *testing.T) {
	content := zipWith(map[string]string{"content.xml": `<office:document><office:body>` +
		`<table:table table:name="Budget"><table:table-row><table:table-cell><text:p>Cell A</text:p></table:table-cell>` +
		`<table:table-cell office:value-type="string"><text:p><text:span>Cell B</text:span></text:p></table:table-cell><table:table-cell/></table:table-row>` +
		`</table:table></office:body></office:document>`})
	got, n, err := odsMarkdown(content)
	if err != nil {
		t.Fatalf("odsMarkdown: %v", err)
	}
	if n != 1 {
		t.Errorf("tables: got %d", n)
	}
	want := "## Budget\n\n| Cell A | Cell B |\n| --- | --- |"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestDecodePlain(t *testing.T) {
	if got := decodePlain([]byte("caf\xc3\xa9")); got != "caf\u00e9" {
		t.Errorf("valid UTF-8: got %q", got)
	}
	if got := decodePlain([]byte("hello\x80world")); got != "hello\ufffdworld" {
		t.Errorf("invalid UTF-8: got %q", got)
	}
}

func TestHTMLConverter(t *testing.T) {
	h := newHTMLConverter()
	got, err := h.markdown([]byte(`<html><body><h1>Annual Report</h1><script>alert(1)</script>` +
		`<p>Hello <b>world</b></p><img src="chart.png" alt="chart">` +
		`<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table></body></html>`))
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("script survived sanitizing: %q", got)
	}
	for _, want := range []string{"# Annual Report", "**world**", "![chart](chart.png)", "| A"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
	if !hasImages(got) || !hasTables(got) {
		t.Errorf("hasImages=%v hasTables=%v", hasImages(got), hasTables(got))
	}
}
