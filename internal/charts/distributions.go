package charts

import (
	"fmt"
	"math"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// HistogramColumns are the fields of the distribution overview, in grid order.
var HistogramColumns = []string{"GHI", "DNI", "DHI", "WS", "RH", "Tamb"}

var histogramTitles = map[string]string{
	"GHI":  "Global Horizontal Irradiance (W/m²)",
	"DNI":  "Direct Normal Irradiance (W/m²)",
	"DHI":  "Diffuse Horizontal Irradiance (W/m²)",
	"WS":   "Wind Speed (m/s)",
	"RH":   "Relative Humidity (%)",
	"Tamb": "Ambient Temperature (°C)",
}

// Bins counts vals into n equal-width bins spanning their range. The
// returned dividers have n+1 entries.
func Bins(vals []float64, n int) (dividers, counts []float64) {
	if len(vals) == 0 || n <= 0 {
		return nil, nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers = make([]float64, n+1)
	floats.Span(dividers, lo, hi)
	// the top edge must lie strictly above the maximum
	dividers[n] = math.Nextafter(hi, math.Inf(1))
	counts = stat.Histogram(nil, dividers, sorted, nil)
	return dividers, counts
}

// histogramSeries draws bins as a filled step outline.
func histogramSeries(name string, vals []float64, bins int, idx int) (chart.ContinuousSeries, []float64) {
	div, cnt := Bins(vals, bins)
	xs := []float64{div[0]}
	ys := []float64{0}
	for i, c := range cnt {
		xs = append(xs, div[i], div[i+1])
		ys = append(ys, c, c)
	}
	xs = append(xs, div[len(div)-1])
	ys = append(ys, 0)
	col := colorAt(idx)
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeWidth: 1, StrokeColor: col, FillColor: col.WithAlpha(128)},
	}, xs
}

func histogramChart(title string, c *table.Column, bins, idx, w, h int) (Figure, error) {
	vals := c.Values()
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s: %w", c.Name, ErrNoData)
	}
	s, xs := histogramSeries(c.Name, vals, bins, idx)
	ch := newChart(title, w, h)
	ch.XAxis = chart.XAxis{Name: "Value", Range: span(xs)}
	ch.YAxis = chart.YAxis{Name: "Frequency", Range: &chart.ContinuousRange{Min: 0, Max: maxOf(s.YValues)*1.05 + 1}}
	ch.Series = []chart.Series{s}
	return chartFigure{ch: ch}, nil
}

// Histograms draws the 3x2 distribution overview of GHI, DNI, DHI, WS, RH
// and Tamb with opt.Bins bins each.
func Histograms(t *table.Table, opt Options) (Figure, error) {
	opt = opt.normalized()
	g := newGrid("", 3, 2, opt)
	for i, name := range HistogramColumns {
		c, err := numeric(t, name)
		if err != nil {
			return nil, err
		}
		f, err := histogramChart(histogramTitles[name], c, opt.Bins, i, g.CellWidth, g.CellHeight)
		if err != nil {
			return nil, err
		}
		g.Set(i/2, i%2, f)
	}
	return g, nil
}

// PairPlot draws an n x n grid: histograms on the diagonal and scatter plots
// of column j (x) against column i (y) elsewhere. With no columns
// analysis.DefaultCorrColumns is used.
func PairPlot(t *table.Table, columns []string, opt Options) (Figure, error) {
	opt = opt.normalized()
	if len(columns) == 0 {
		columns = analysis.DefaultCorrColumns
	}
	n := len(columns)
	cols := make([]*table.Column, n)
	for i, name := range columns {
		c, err := numeric(t, name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	g := newGrid("", n, n, opt)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				f, err := histogramChart("", cols[i], min(opt.Bins, 20), i, g.CellWidth, g.CellHeight)
				if err != nil {
					return nil, err
				}
				g.Set(i, j, f)
				continue
			}
			f, err := scatterChart(t, columns[j], columns[i], "", i, g.CellWidth, g.CellHeight)
			if err != nil {
				return nil, err
			}
			g.Set(i, j, f)
		}
	}
	return g, nil
}

func maxOf(vals []float64) float64 {
	m := 0.0
	for _, v := range vals {
		m = math.Max(m, v)
	}
	return m
}
