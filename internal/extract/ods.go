package extract

import (
	"regexp"
	"strings"
)

var (
	odsTable = regexp.MustCompile(`(?s)<table:table[ >].*?</table:table>`)
	odsName  = regexp.MustCompile(`^<table:table[^>]*table:name="([^"]*)"`)
	odsRow   = regexp.MustCompile(`(?s)<table:table-row[ >/].*?</table:table-row>`)
	odsCell  = regexp.MustCompile(`(?s)<table:table-cell[^>]*/>|<table:table-cell[^>]*>.*?</table:table-cell>`)
)

// odsMarkdown renders every spreadsheet table as a markdown table. Empty
// trailing cells are dropped from each row.
func odsMarkdown(content []byte) (string, int, error) {
	s, err := readODContent("ods", content)
	if err != nil {
		return "", 0, err
	}
	tables := odsTable.FindAllString(s, -1)
	var sections []string
	for _, table := range tables {
		var lines []string
		if m := odsName.FindStringSubmatch(table); m != nil && m[1] != "" {
			lines = append(lines, "## "+unescapeXML(m[1]))
		}
		for _, row := range odsRow.FindAllString(table, -1) {
			var cells []string
			for _, cell := range odsCell.FindAllString(row, -1) {
				cells = append(cells, odInnerText(cell))
			}
			for len(cells) > 0 && cells[len(cells)-1] == "" {
				cells = cells[:len(cells)-1]
			}
			if len(cells) > 0 {
				lines = append(lines, tableRow(cells))
			}
		}
		if len(lines) > 0 {
			sections = append(sections, strings.Join(withTableHeaders(lines), "\n"))
		}
	}
	return strings.Join(sections, "\n\n"), len(tables), nil
}
