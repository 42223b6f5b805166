package charts

import (
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// Direction is a labelled compass bearing in degrees, clockwise from north.
type Direction struct {
	Label   string
	Degrees float64
}

// DirectionLabels are the angular grid lines of the wind polar plot: eight
// labels at 22.5 degree spacing starting from north.
func DirectionLabels() []Direction {
	names := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	out := make([]Direction, len(names))
	for i, n := range names {
		out[i] = Direction{Label: n, Degrees: 22.5 * float64(i)}
	}
	return out
}

// RadialTicks returns floor(max/4), floor(max/2) and floor(3*max/4).
func RadialTicks(maxSpeed float64) []float64 {
	return []float64{
		math.Floor(maxSpeed / 4),
		math.Floor(maxSpeed / 2),
		math.Floor(maxSpeed * 3 / 4),
	}
}

// polarXY projects a bearing (degrees clockwise from north) and radius onto
// plane coordinates with north up.
func polarXY(r, deg float64) (x, y float64) {
	rad := deg * math.Pi / 180
	return r * math.Sin(rad), r * math.Cos(rad)
}

// Polar plots wind speed (radius) against wind direction (bearing), coloured
// by speed on the viridis scale. The table is not modified.
func Polar(t *table.Table, wsCol, wdCol string, opt Options) (Figure, error) {
	opt = opt.normalized()
	if wsCol == "" {
		wsCol = "WS"
	}
	if wdCol == "" {
		wdCol = "WD"
	}
	ws, wd, err := xy(t, wsCol, wdCol)
	if err != nil {
		return nil, err
	}
	maxWS := ws[0]
	minWS := ws[0]
	for _, v := range ws {
		maxWS = math.Max(maxWS, v)
		minWS = math.Min(minWS, v)
	}
	rlim := maxWS * 1.1
	if rlim <= 0 {
		rlim = 1
	}

	var series []chart.Series
	grid := chart.Style{StrokeWidth: 1, StrokeColor: drawing.ColorFromHex("cccccc")}

	rings := append(RadialTicks(maxWS), rlim)
	var ringLabels []chart.Value2
	for i, r := range rings {
		if r <= 0 {
			continue
		}
		var xs, ys []float64
		for a := 0; a <= 360; a += 5 {
			x, y := polarXY(r, float64(a))
			xs = append(xs, x)
			ys = append(ys, y)
		}
		series = append(series, chart.ContinuousSeries{XValues: xs, YValues: ys, Style: grid})
		if i < len(rings)-1 {
			x, y := polarXY(r, 270)
			ringLabels = append(ringLabels, chart.Value2{XValue: x, YValue: y, Label: strconv.FormatFloat(r, 'f', -1, 64)})
		}
	}

	var dirLabels []chart.Value2
	for _, d := range DirectionLabels() {
		x0, y0 := polarXY(rlim, d.Degrees+180)
		x1, y1 := polarXY(rlim, d.Degrees)
		series = append(series, chart.ContinuousSeries{XValues: []float64{x0, x1}, YValues: []float64{y0, y1}, Style: grid})
		lx, ly := polarXY(rlim*1.04, d.Degrees)
		dirLabels = append(dirLabels, chart.Value2{XValue: lx, YValue: ly, Label: d.Label})
	}

	px := make([]float64, len(ws))
	py := make([]float64, len(ws))
	for i := range ws {
		px[i], py[i] = polarXY(ws[i], wd[i])
	}
	speeds := ws
	hiWS := maxWS
	if hiWS == minWS {
		hiWS = minWS + 1
	}
	series = append(series, chart.ContinuousSeries{
		Name:    "Wind",
		XValues: px,
		YValues: py,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    3,
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return chart.Viridis(speeds[index], minWS, hiWS).WithAlpha(128)
			},
		},
	})
	if len(ringLabels) > 0 {
		series = append(series, chart.AnnotationSeries{Annotations: ringLabels})
	}
	series = append(series, chart.AnnotationSeries{Annotations: dirLabels})

	side := min(opt.Width, opt.Height)
	bound := rlim * 1.15
	ch := newChart("Wind Speed and Direction Distribution", side, side)
	// the compass grid replaces the cartesian axes
	ch.XAxis = chart.XAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: -bound, Max: bound}}
	ch.YAxis = chart.YAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: -bound, Max: bound}}
	ch.Series = series
	return chartFigure{ch: ch}, nil
}
