package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// excelMarkdown renders every sheet as a "## <sheet>" section holding a
// markdown table, the first row serving as the header.
func excelMarkdown(content []byte) (string, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", 0, fmt.Errorf("xlsx: %w: %v", ErrUnsupportedOrCorrupt, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var sections []string
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", 0, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		width := 0
		for _, row := range rows {
			width = max(width, len(row))
		}
		if width == 0 {
			continue
		}
		lines := []string{"## " + sheet}
		for _, row := range rows {
			cells := make([]string, width)
			copy(cells, row)
			lines = append(lines, tableRow(cells))
		}
		sections = append(sections, strings.Join(withTableHeaders(lines), "\n"))
	}
	return strings.Join(sections, "\n\n"), len(sheets), nil
}
