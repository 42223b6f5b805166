package charts

import (
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// Wind and irradiance fields of the scatter matrix.
var (
	WindColumns       = []string{"WS", "WSgust", "WD"}
	IrradianceColumns = []string{"GHI", "DNI", "DHI"}
)

func scatterChart(t *table.Table, xName, yName, title string, idx, w, h int) (Figure, error) {
	xs, ys, err := xy(t, xName, yName)
	if err != nil {
		return nil, err
	}
	ch := newChart(title, w, h)
	ch.XAxis = chart.XAxis{Name: xName, Range: span(xs)}
	ch.YAxis = chart.YAxis{Name: yName, Range: span(ys)}
	ch.Series = []chart.Series{chart.ContinuousSeries{Name: yName, XValues: xs, YValues: ys, Style: pointStyle(colorAt(idx))}}
	return chartFigure{ch: ch}, nil
}

// Scatter plots y against x.
func Scatter(t *table.Table, x, y string, opt Options) (Figure, error) {
	opt = opt.normalized()
	return scatterChart(t, x, y, fmt.Sprintf("%s vs %s", y, x), 0, opt.Width, opt.Height)
}

// ScatterMatrix plots each wind field (columns) against each irradiance
// field (rows).
func ScatterMatrix(t *table.Table, opt Options) (Figure, error) {
	opt = opt.normalized()
	g := newGrid("Wind Conditions vs Solar Irradiance", len(IrradianceColumns), len(WindColumns), opt)
	for i, y := range IrradianceColumns {
		for j, x := range WindColumns {
			f, err := scatterChart(t, x, y, "", i, g.CellWidth, g.CellHeight)
			if err != nil {
				return nil, err
			}
			g.Set(i, j, f)
		}
	}
	return g, nil
}

// Temperature plots Tamb, GHI and DNI against relative humidity side by side.
func Temperature(t *table.Table, opt Options) (Figure, error) {
	opt = opt.normalized()
	panels := []struct{ y, title string }{
		{"Tamb", "Temperature vs Relative Humidity"},
		{"GHI", "Global Horizontal Irradiance vs Relative Humidity"},
		{"DNI", "Direct Normal Irradiance vs Relative Humidity"},
	}
	g := newGrid("", 1, len(panels), opt)
	for j, p := range panels {
		f, err := scatterChart(t, "RH", p.y, p.title, j, g.CellWidth, g.CellHeight)
		if err != nil {
			return nil, err
		}
		g.Set(0, j, f)
	}
	return g, nil
}

// BubbleScales are the marker area factors applied to the bubble column in
// the left and right panels.
var BubbleScales = []float64{10, 0.1}

// BubbleWidth converts a marker area into a dot diameter in pixels.
func BubbleWidth(v, scale float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 1
	}
	return math.Max(1, math.Min(40, math.Sqrt(v*scale)))
}

// Bubbles plots GHI and DNI (rows) against Tamb with marker size taken from
// bubble, scaled by each of BubbleScales (columns).
func Bubbles(t *table.Table, bubble string, opt Options) (Figure, error) {
	opt = opt.normalized()
	if bubble == "" {
		bubble = "RH"
	}
	size, err := numeric(t, bubble)
	if err != nil {
		return nil, err
	}
	tamb, err := numeric(t, "Tamb")
	if err != nil {
		return nil, err
	}
	g := newGrid("", 2, len(BubbleScales), opt)
	for i, name := range []string{"GHI", "DNI"} {
		x, err := numeric(t, name)
		if err != nil {
			return nil, err
		}
		var xs, ys, ss []float64
		for k := 0; k < x.Len(); k++ {
			if x.IsNull(k) || tamb.IsNull(k) || size.IsNull(k) {
				continue
			}
			xs = append(xs, x.Nums[k])
			ys = append(ys, tamb.Nums[k])
			ss = append(ss, size.Nums[k])
		}
		if len(xs) == 0 {
			return nil, fmt.Errorf("%s vs Tamb: %w", name, ErrNoData)
		}
		for j, scale := range BubbleScales {
			scale := scale
			ch := newChart(fmt.Sprintf("%s vs. Tamb vs. WS with %s", name, bubble), g.CellWidth, g.CellHeight)
			ch.XAxis = chart.XAxis{Name: name + " (W/m²)", Range: span(xs)}
			ch.YAxis = chart.YAxis{Name: "Tamb (°C)", Range: span(ys)}
			st := pointStyle(colorAt(i))
			st.DotWidthProvider = func(_, _ chart.Range, index int, _, _ float64) float64 {
				return BubbleWidth(ss[index], scale)
			}
			ch.Series = []chart.Series{chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: st}}
			g.Set(i, j, chartFigure{ch: ch})
		}
	}
	return g, nil
}
