package presenter

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/meteobot/meteobot/internal/forecast"
)

const csvTimeLayout = "2006-01-02T15:04"

// RenderCSV encodes the table as RFC 4180 CSV: header row, then one record
// per table row. Nil cells are written as empty fields.
func RenderCSV(t *forecast.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.Header()); err != nil {
		return nil, err
	}
	record := make([]string, 0, 1+3*len(t.Models))
	for _, row := range t.Rows {
		record = record[:0]
		record = append(record, row.Time.Format(csvTimeLayout))
		for _, v := range row.Cells {
			if v == nil {
				record = append(record, "")
			} else {
				record = append(record, strconv.FormatFloat(*v, 'f', -1, 64))
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
