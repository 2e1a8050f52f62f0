package forecast

import (
	"time"
)

// Observation is one hourly sample from a single forecast model.
// Measures are pointers because the provider may report gaps as null.
type Observation struct {
	Time          time.Time
	Temperature   *float64
	Precipitation *float64
	WindSpeed     *float64
}

// Series is an hourly time series for one model, ordered by Time ascending
// with unique timestamps.
type Series struct {
	Model        string
	Observations []Observation
}

// Request describes one forecast aggregation: location, zone, window and the
// ordered set of models to compare.
type Request struct {
	Lat       float64
	Lon       float64
	Timezone  string
	Date      string // YYYY-MM-DD, in the requested timezone
	StartHour int
	EndHour   int
	Models    []string
}

// measureNames are the per-model column name prefixes, in column order.
var measureNames = [3]string{"temperature", "precipitation", "wind_speed"}

// Row is one timestamp of the aggregated table. Cells holds 3 values per
// model in request order; nil marks a model with no sample at this time.
type Row struct {
	Time  time.Time
	Cells []*float64
}

// Table is the outer join of per-model series on time: one row per distinct
// timestamp, ascending, with columns namespaced per model.
type Table struct {
	Models []string
	Rows   []Row
}

// Header returns the column names: time followed by temperature_<m>,
// precipitation_<m>, wind_speed_<m> for each model in order.
func (t *Table) Header() []string {
	h := make([]string, 0, 1+3*len(t.Models))
	h = append(h, "time")
	for _, m := range t.Models {
		for _, meas := range measureNames {
			h = append(h, meas+"_"+m)
		}
	}
	return h
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Column returns the cell values for one model's measure, in row order.
// measure is an index into temperature/precipitation/wind_speed (0..2).
func (t *Table) Column(model string, measure int) []*float64 {
	idx := -1
	for i, m := range t.Models {
		if m == model {
			idx = i
			break
		}
	}
	if idx < 0 || measure < 0 || measure > 2 {
		return nil
	}
	col := make([]*float64, len(t.Rows))
	for i, r := range t.Rows {
		col[i] = r.Cells[3*idx+measure]
	}
	return col
}
