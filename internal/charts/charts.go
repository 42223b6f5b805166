// Package charts renders sensor tables to PNG figures.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// Figure is anything that can be written out as a PNG image.
type Figure interface {
	Render(w io.Writer) error
}

// ErrNoData is returned when a chart would have nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Options sets figure size and shared chart parameters.
type Options struct {
	Width  int
	Height int
	// Bins is the histogram bin count.
	Bins int
	// TimeColumn is used as the x axis of line charts when present.
	TimeColumn string
}

// DefaultOptions returns the sizes used by the CLI.
func DefaultOptions() Options {
	return Options{Width: 1200, Height: 800, Bins: 50, TimeColumn: analysis.DefaultTimeColumn}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Bins <= 0 {
		o.Bins = d.Bins
	}
	if o.TimeColumn == "" {
		o.TimeColumn = d.TimeColumn
	}
	return o
}

type chartFigure struct{ ch chart.Chart }

func (f chartFigure) Render(w io.Writer) error { return f.ch.Render(chart.PNG, w) }

type barFigure struct{ bc chart.BarChart }

func (f barFigure) Render(w io.Writer) error { return f.bc.Render(chart.PNG, w) }

type imageFigure struct{ draw func() (image.Image, error) }

func (f imageFigure) Render(w io.Writer) error {
	img, err := f.draw()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// rasterize renders a figure and decodes it back into an image.
func rasterize(f Figure) (image.Image, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
}

func colorAt(i int) drawing.Color { return palette[i%len(palette)] }

// pointStyle renders points only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col.WithAlpha(128),
	}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeWidth: 1.5, StrokeColor: col}
}

func numeric(t *table.Table, name string) (*table.Column, error) {
	if t == nil {
		return nil, analysis.ErrNotTabular
	}
	c, ok := t.Col(name)
	if !ok {
		return nil, &analysis.ColumnError{Column: name, Err: analysis.ErrColumnNotFound}
	}
	if c.Kind != table.Numeric {
		return nil, &analysis.ColumnError{Column: name, Err: analysis.ErrNotNumeric}
	}
	return c, nil
}

// xy returns the rows where both columns are present.
func xy(t *table.Table, xName, yName string) (xs, ys []float64, err error) {
	x, err := numeric(t, xName)
	if err != nil {
		return nil, nil, err
	}
	y, err := numeric(t, yName)
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i < x.Len(); i++ {
		if x.IsNull(i) || y.IsNull(i) {
			continue
		}
		xs = append(xs, x.Nums[i])
		ys = append(ys, y.Nums[i])
	}
	if len(xs) == 0 {
		return nil, nil, fmt.Errorf("%s vs %s: %w", yName, xName, ErrNoData)
	}
	return xs, ys, nil
}

// span returns a non-degenerate range covering vals with a small margin.
func span(vals ...[]float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vs := range vals {
		for _, v := range vs {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func newChart(title string, width, height int) chart.Chart {
	return chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
	}
}

// timeAxis returns the time column of t when it is a datetime column.
func timeAxis(t *table.Table, name string) (*table.Column, bool) {
	c, ok := t.Col(name)
	if !ok || c.Kind != table.Datetime {
		return nil, false
	}
	return c, true
}

// lineSeries builds one series per column against the time column, or the
// row index when there is none. rows restricts the rows used; nil means all.
func lineSeries(t *table.Table, name, label string, ts *table.Column, rows []int, st chart.Style) (chart.Series, error) {
	c, err := numeric(t, name)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = make([]int, c.Len())
		for i := range rows {
			rows[i] = i
		}
	}
	var (
		times []time.Time
		xs    []float64
		ys    []float64
	)
	for _, i := range rows {
		if c.IsNull(i) || (ts != nil && ts.IsNull(i)) {
			continue
		}
		if ts != nil {
			times = append(times, ts.Times[i])
		} else {
			xs = append(xs, float64(i))
		}
		ys = append(ys, c.Nums[i])
	}
	if len(ys) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoData)
	}
	if ts != nil {
		return chart.TimeSeries{Name: label, XValues: times, YValues: ys, Style: st}, nil
	}
	return chart.ContinuousSeries{Name: label, XValues: xs, YValues: ys, Style: st}, nil
}
