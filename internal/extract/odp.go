package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// odContentPath is the path to the body of an OpenDocument package.
const odContentPath = "content.xml"

var (
	odpPage = regexp.MustCompile(`(?s)<draw:page[ >].*?</draw:page>`)
	// odText matches paragraphs and headings in document order.
	odText  = regexp.MustCompile(`(?s)<text:(p|h)[ >].*?</text:(?:p|h)>`)
	odLevel = regexp.MustCompile(`text:outline-level="([1-9])"`)
	odImage = regexp.MustCompile(`<draw:image[ />]`)
	xmlTag  = regexp.MustCompile(`<[^>]+>`)
)

// readODContent returns content.xml of an OpenDocument package.
func readODContent(format string, content []byte) (string, error) {
	zr, err := openZip(format, content)
	if err != nil {
		return "", err
	}
	data, err := readZipFile(zr, odContentPath)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", format, ErrUnsupportedOrCorrupt, err)
	}
	if data == nil {
		return "", fmt.Errorf("%s: %w: %s not found", format, ErrUnsupportedOrCorrupt, odContentPath)
	}
	return string(data), nil
}

// odpMarkdown renders each draw:page of a presentation as a "## Slide N"
// section. It returns the markdown and the page count.
func odpMarkdown(content []byte) (string, int, error) {
	s, err := readODContent("odp", content)
	if err != nil {
		return "", 0, err
	}
	pages := odpPage.FindAllString(s, -1)
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("## Slide " + strconv.Itoa(i+1) + "\n")
		for _, line := range odLines(page) {
			b.WriteString(line + "\n")
		}
		for k := range odImage.FindAllStringIndex(page, -1) {
			b.WriteString("![image](slide-" + strconv.Itoa(i+1) + "-image-" + strconv.Itoa(k+1) + ")\n")
		}
	}
	return strings.TrimSpace(b.String()), len(pages), nil
}

// odLines returns the text of every paragraph and heading in fragment, with
// headings prefixed by their outline level in # markers.
func odLines(fragment string) []string {
	var lines []string
	for _, m := range odText.FindAllStringSubmatch(fragment, -1) {
		text := odInnerText(m[0])
		if text == "" {
			continue
		}
		if m[1] == "h" {
			level := 1
			if lv := odLevel.FindStringSubmatch(m[0]); lv != nil {
				level, _ = strconv.Atoi(lv[1])
			}
			text = strings.Repeat("#", level) + " " + text
		}
		lines = append(lines, text)
	}
	return lines
}

func odInnerText(element string) string {
	element = strings.ReplaceAll(element, "<text:tab/>", " ")
	element = strings.ReplaceAll(element, "<text:line-break/>", " ")
	return strings.TrimSpace(unescapeXML(xmlTag.ReplaceAllString(element, "")))
}
