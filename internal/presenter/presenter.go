// Package presenter renders aggregated forecast tables for the chat
// transport: a monospace text dump for small tables, a CSV file plus a
// truncated preview for large ones, and a stacked multi-panel chart.
package presenter

import (
	"github.com/meteobot/meteobot/internal/forecast"
)

// Presenter applies the size-threshold reply policy.
type Presenter struct {
	// TextLimit is the maximum rendered text length sent inline. Longer
	// tables are delivered as a CSV file with a preview.
	TextLimit int

	// PreviewRows is how many leading rows the preview keeps.
	PreviewRows int
}

// Reply is what the command handler forwards to the chat.
type Reply struct {
	// Text is the full table when it fits, otherwise a preview.
	Text string

	// CSV is the file payload; nil when the table fit inline.
	CSV []byte

	// Truncated reports whether Text is a preview rather than the full table.
	Truncated bool
}

// New creates a Presenter with the given thresholds.
func New(textLimit, previewRows int) *Presenter {
	return &Presenter{TextLimit: textLimit, PreviewRows: previewRows}
}

// Render chooses between an inline text table and a CSV file with preview,
// based on the rendered text length.
func (p *Presenter) Render(t *forecast.Table) (Reply, error) {
	text := RenderText(t)
	if len(text) <= p.TextLimit {
		return Reply{Text: text}, nil
	}

	csvBytes, err := RenderCSV(t)
	if err != nil {
		return Reply{}, err
	}
	return Reply{
		Text:      RenderText(head(t, p.PreviewRows)),
		CSV:       csvBytes,
		Truncated: true,
	}, nil
}

// head returns a copy of t limited to its first n rows.
func head(t *forecast.Table, n int) *forecast.Table {
	if n >= len(t.Rows) {
		return t
	}
	return &forecast.Table{Models: t.Models, Rows: t.Rows[:n]}
}
