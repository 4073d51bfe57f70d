package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// pptxSlide matches slide part names and captures the slide number.
	pptxSlide = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	// atTag matches <a:t>text</a:t> or <a:t xml:space="preserve">text</a:t>.
	atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)
	// apBlock matches one DrawingML paragraph.
	apBlock = regexp.MustCompile(`(?s)<a:p>.*?</a:p>|<a:p [^/]*?>.*?</a:p>`)
	pptxPic = regexp.MustCompile(`<p:pic[ >]`)
)

// pptxMarkdown renders each slide, in slide order, as a "## Slide N" section
// with one line per text paragraph. It returns the markdown and the slide count.
func pptxMarkdown(content []byte) (string, int, error) {
	zr, err := openZip("pptx", content)
	if err != nil {
		return "", 0, err
	}
	type slide struct {
		n    int
		name string
	}
	var slides []slide
	for _, f := range zr.File {
		if m := pptxSlide.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n: n, name: f.Name})
		}
	}
	if len(slides) == 0 {
		return "", 0, nil
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var b strings.Builder
	for i, s := range slides {
		data, err := readZipFile(zr, s.name)
		if err != nil {
			return "", 0, err
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("## Slide " + strconv.Itoa(i+1) + "\n")
		xml := string(data)
		for _, para := range apBlock.FindAllString(xml, -1) {
			var line strings.Builder
			for _, p := range atTag.FindAllStringSubmatch(para, -1) {
				line.WriteString(p[1])
			}
			if text := strings.TrimSpace(unescapeXML(line.String())); text != "" {
				b.WriteString(text + "\n")
			}
		}
		for k := range pptxPic.FindAllStringIndex(xml, -1) {
			b.WriteString("![image](slide-" + strconv.Itoa(i+1) + "-pic-" + strconv.Itoa(k+1) + ")\n")
		}
	}
	return strings.TrimSpace(b.String()), len(slides), nil
}
