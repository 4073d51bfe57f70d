package extract

import (
	"archive/zip"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// docxMainContentType is the content type for the main document in DOCX files.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

var (
	// wtTag matches <w:t>text</w:t> or <w:t xml:space="preserve">text</w:t>.
	wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	// docxBlock matches a whole table or a single paragraph, whichever starts first.
	docxBlock = regexp.MustCompile(`(?s)<w:tbl>.*?</w:tbl>|<w:p[ >].*?</w:p>`)
	docxRow   = regexp.MustCompile(`(?s)<w:tr[ >].*?</w:tr>`)
	docxCell  = regexp.MustCompile(`(?s)<w:tc[ >].*?</w:tc>`)
	// docxHeading captures the level of Heading1..Heading9 and Title paragraph styles.
	docxHeading = regexp.MustCompile(`<w:pStyle w:val="(?:Heading([1-9])|(Title))"`)
	docxDrawing = regexp.MustCompile(`<w:drawing[ >]|<w:pict[ >]`)
)

// partNameRe extracts PartName from Override elements in [Content_Types].xml.
var partNameRe = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)

// partNameRe2 handles the case where ContentType appears before PartName.
var partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)

// findDocxMainDocumentPath finds the main document path from [Content_Types].xml.
// Returns the path without leading slash, or empty string if not found.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	data, err := readZipFile(zr, contentTypesPath)
	if err != nil || data == nil {
		return ""
	}
	content := string(data)
	if matches := partNameRe.FindStringSubmatch(content); len(matches) > 1 {
		return strings.TrimPrefix(matches[1], "/")
	}
	if matches := partNameRe2.FindStringSubmatch(content); len(matches) > 1 {
		return strings.TrimPrefix(matches[1], "/")
	}
	return ""
}

// docxMarkdown converts the main document of a .docx to markdown: one line
// per paragraph, heading styles as # headings, tables as rows and drawings as
// image references. Run text is read with a regex over <w:t> nodes because
// real documents carry attributes on nearly every element.
func docxMarkdown(content []byte) (string, error) {
	zr, err := openZip("docx", content)
	if err != nil {
		return "", err
	}
	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	docXML, err := readZipFile(zr, docPath)
	if err != nil {
		return "", fmt.Errorf("docx: %w: %v", ErrUnsupportedOrCorrupt, err)
	}
	if docXML == nil {
		return "", fmt.Errorf("docx: %w: %s not found", ErrUnsupportedOrCorrupt, docPath)
	}

	var lines []string
	images := 0
	for _, block := range docxBlock.FindAllString(string(docXML), -1) {
		if strings.HasPrefix(block, "<w:tbl>") {
			for _, row := range docxRow.FindAllString(block, -1) {
				var cells []string
				for _, cell := range docxCell.FindAllString(row, -1) {
					cells = append(cells, runText(cell))
				}
				if len(cells) > 0 {
					lines = append(lines, tableRow(cells))
				}
			}
			continue
		}
		if docxDrawing.MatchString(block) {
			images++
			lines = append(lines, "![image](docx-image-"+strconv.Itoa(images)+")")
		}
		text := runText(block)
		if text == "" {
			continue
		}
		if m := docxHeading.FindStringSubmatch(block); m != nil {
			level := 1
			if m[1] != "" {
				level, _ = strconv.Atoi(m[1])
			}
			text = strings.Repeat("#", level) + " " + text
		}
		lines = append(lines, text)
	}
	return strings.Join(withTableHeaders(lines), "\n"), nil
}

// runText joins every <w:t> run inside fragment.
func runText(fragment string) string {
	var b strings.Builder
	for _, p := range wtTag.FindAllStringSubmatch(fragment, -1) {
		b.WriteString(p[1])
	}
	return strings.TrimSpace(unescapeXML(b.String()))
}
