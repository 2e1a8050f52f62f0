package presenter

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"time"

	"github.com/wcharczuk/go-chart"

	"github.com/meteobot/meteobot/internal/forecast"
)

const (
	panelWidth  = 1000
	panelHeight = 340
)

// ErrNothingToChart is returned when no model contributed any plottable point.
var ErrNothingToChart = errors.New("nothing to chart")

type panelSpec struct {
	measure int
	title   string
	yLabel  string
}

var panels = []panelSpec{
	{measure: 0, title: "Temperature Forecast", yLabel: "Temperature (°C)"},
	{measure: 1, title: "Precipitation Forecast", yLabel: "Precipitation (mm)"},
	{measure: 2, title: "Wind Speed Forecast", yLabel: "Wind Speed (km/h)"},
}

// RenderChart draws three stacked panels (temperature, precipitation, wind
// speed) sharing the time axis, one line per model, and returns a single
// composited PNG. models may be nil to use the table's own model list.
func RenderChart(t *forecast.Table, models []string) ([]byte, error) {
	if models == nil {
		models = t.Models
	}

	images := make([]image.Image, 0, len(panels))
	for _, p := range panels {
		img, err := renderPanel(t, models, p)
		if err != nil {
			return nil, err
		}
		if img == nil {
			continue
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		return nil, ErrNothingToChart
	}

	return stack(images)
}

// renderPanel draws one measure's panel. It returns a nil image (no error)
// when no model has a single plottable point for the measure.
func renderPanel(t *forecast.Table, models []string, p panelSpec) (image.Image, error) {
	series := make([]chart.Series, 0, len(models))
	for i, m := range models {
		xs, ys := seriesPoints(t, m, p.measure)
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name:    m,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				Show:        true,
				StrokeColor: chart.GetDefaultColor(i),
				DotColor:    chart.GetDefaultColor(i),
				DotWidth:    3,
			},
		})
	}
	if len(series) == 0 {
		return nil, nil
	}

	graph := chart.Chart{
		Title:      p.title,
		TitleStyle: chart.StyleShow(),
		Width:      panelWidth,
		Height:     panelHeight,
		XAxis: chart.XAxis{
			Style: chart.Style{
				Show:                true,
				TextRotationDegrees: 45.0,
			},
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02 15:04"),
		},
		YAxis: chart.YAxis{
			Name:      p.yLabel,
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// seriesPoints collects a model's non-nil samples for one measure.
func seriesPoints(t *forecast.Table, model string, measure int) ([]time.Time, []float64) {
	col := t.Column(model, measure)
	xs := make([]time.Time, 0, len(col))
	ys := make([]float64, 0, len(col))
	for i, v := range col {
		if v == nil {
			continue
		}
		xs = append(xs, t.Rows[i].Time)
		ys = append(ys, *v)
	}
	return xs, ys
}

// stack composites the panel images vertically into one PNG.
func stack(images []image.Image) ([]byte, error) {
	width, height := 0, 0
	for _, img := range images {
		b := img.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)

	y := 0
	for _, img := range images {
		b := img.Bounds()
		dst := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(out, dst, img, b.Min, draw.Src)
		y += b.Dy()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
