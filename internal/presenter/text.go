package presenter

import (
	"strconv"
	"strings"

	"github.com/meteobot/meteobot/internal/forecast"
)

const textTimeLayout = "2006-01-02 15:04"

// RenderText formats the table as a monospace-aligned dump: one header line,
// one line per row, columns right-aligned and separated by two spaces. Nil
// cells render as NaN. An empty table renders as the header line alone.
func RenderText(t *forecast.Table) string {
	header := t.Header()

	cells := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		line := make([]string, 0, len(header))
		line = append(line, row.Time.Format(textTimeLayout))
		for _, v := range row.Cells {
			line = append(line, formatCell(v))
		}
		cells[i] = line
	}

	widths := make([]int, len(header))
	for c, h := range header {
		widths[c] = len(h)
	}
	for _, line := range cells {
		for c, v := range line {
			if len(v) > widths[c] {
				widths[c] = len(v)
			}
		}
	}

	var b strings.Builder
	writeLine := func(line []string) {
		for c, v := range line {
			if c > 0 {
				b.WriteString("  ")
			}
			b.WriteString(strings.Repeat(" ", widths[c]-len(v)))
			b.WriteString(v)
		}
		b.WriteByte('\n')
	}

	writeLine(header)
	for _, line := range cells {
		writeLine(line)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func formatCell(v *float64) string {
	if v == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
