package charts

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

var small = Options{Width: 600, Height: 400, Bins: 10}

// sensorTable builds n readings ten minutes apart with every field the
// charts use.
func sensorTable(t *testing.T, n int) *table.Table {
	t.Helper()
	start := time.Date(2021, 8, 9, 6, 0, 0, 0, time.UTC)
	fields := map[string]func(i float64) float64{
		"GHI":      func(i float64) float64 { return 400 + 300*math.Sin(i/7) },
		"DNI":      func(i float64) float64 { return 300 + 200*math.Cos(i/5) },
		"DHI":      func(i float64) float64 { return 120 + 50*math.Sin(i/3) },
		"ModA":     func(i float64) float64 { return 380 + 280*math.Sin(i/7) },
		"ModB":     func(i float64) float64 { return 370 + 270*math.Sin(i/7) },
		"TModA":    func(i float64) float64 { return 35 + 10*math.Sin(i/9) },
		"TModB":    func(i float64) float64 { return 33 + 9*math.Cos(i/9) },
		"Tamb":     func(i float64) float64 { return 26 + 4*math.Sin(i/11) },
		"RH":       func(i float64) float64 { return 60 + 25*math.Cos(i/13) },
		"WS":       func(i float64) float64 { return 2 + 1.5*math.Abs(math.Sin(i/4)) },
		"WSgust":   func(i float64) float64 { return 3 + 2*math.Abs(math.Sin(i/4)) },
		"WD":       func(i float64) float64 { return math.Mod(i*37, 360) },
		"Cleaning": func(i float64) float64 { return math.Mod(i, 2) },
	}
	times := make([]time.Time, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * 10 * time.Minute)
	}
	cols := []*table.Column{table.NewDatetime("Timestamp", times)}
	for _, name := range []string{"GHI", "DNI", "DHI", "ModA", "ModB", "TModA", "TModB", "Tamb", "RH", "WS", "WSgust", "WD", "Cleaning"} {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = fields[name](float64(i))
		}
		cols = append(cols, table.NewNumeric(name, vals))
	}
	tb, err := table.New("site", cols...)
	require.NoError(t, err)
	return tb
}

func requirePNG(t *testing.T, f Figure, err error) (w, h int) {
	t.Helper()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestSingleCharts(t *testing.T) {
	tb := sensorTable(t, 60)
	cases := map[string]func() (Figure, error){
		"timeseries": func() (Figure, error) { return TimeSeries(tb, small) },
		"area":       func() (Figure, error) { return Area(tb, small) },
		"cleaning":   func() (Figure, error) { return CleaningImpact(tb, small) },
		"scatter":    func() (Figure, error) { return Scatter(tb, "WS", "GHI", small) },
		"lines":      func() (Figure, error) { return Lines(tb, []string{"TModA", "TModB"}, small) },
		"polar":      func() (Figure, error) { return Polar(tb, "", "", small) },
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := build()
			w, h := requirePNG(t, f, err)
			assert.Positive(t, w)
			assert.Positive(t, h)
		})
	}
}

func TestGridCharts(t *testing.T) {
	tb := sensorTable(t, 40)
	f, err := Histograms(tb, small)
	w, h := requirePNG(t, f, err)
	assert.Equal(t, 2*300, w)
	assert.Equal(t, 3*180, h, "cells never shrink below the minimum height")

	f, err = PairPlot(tb, []string{"GHI", "DNI", "DHI"}, small)
	w, _ = requirePNG(t, f, err)
	assert.Equal(t, 3*240, w)

	f, err = ScatterMatrix(tb, small)
	_, h = requirePNG(t, f, err)
	assert.Equal(t, gridTitleHeight+3*180, h)

	f, err = Temperature(tb, small)
	w, _ = requirePNG(t, f, err)
	assert.Equal(t, 3*240, w)

	f, err = Bubbles(tb, "RH", small)
	w, h = requirePNG(t, f, err)
	assert.Equal(t, 2*300, w)
	assert.Equal(t, 2*186, h)
}

func TestHeatmap(t *testing.T) {
	tb := sensorTable(t, 30)
	m, err := analysis.CorrelationMatrix(tb)
	require.NoError(t, err)
	m.Values[0][1] = math.NaN()
	f, err := Heatmap(m, small)
	requirePNG(t, f, err)

	_, err = Heatmap(nil, small)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCompareCharts(t *testing.T) {
	a := sensorTable(t, 300)
	b := sensorTable(t, 300)
	ghi, _ := b.Col("GHI")
	for i := range ghi.Nums {
		ghi.Nums[i] += 50
	}
	sites := []analysis.Site{{Name: "benin", Table: a}, {Name: "togo", Table: b}}
	cmp, err := analysis.Compare(sites)
	require.NoError(t, err)
	f, err := MeanBars(cmp, small)
	requirePNG(t, f, err)

	var daily []analysis.Site
	for _, s := range sites {
		d, err := analysis.ResampleDaily(s.Table, "", "GHI")
		require.NoError(t, err)
		require.Equal(t, 3, d.Len())
		daily = append(daily, analysis.Site{Name: s.Name, Table: d})
	}
	f, err = DailyMeans(daily, "GHI", small)
	requirePNG(t, f, err)

	_, err = DailyMeans([]analysis.Site{{Name: "x", Table: a}}, "GHI", small)
	assert.ErrorIs(t, err, analysis.ErrNotDatetime)
}

func TestMissingColumns(t *testing.T) {
	tb, err := table.New("bare", table.NewNumeric("GHI", []float64{1, 2, 3}))
	require.NoError(t, err)

	_, err = Histograms(tb, small)
	assert.ErrorIs(t, err, analysis.ErrColumnNotFound)
	_, err = Polar(tb, "", "", small)
	assert.ErrorIs(t, err, analysis.ErrColumnNotFound)
	_, err = CleaningImpact(tb, small)
	assert.ErrorIs(t, err, analysis.ErrColumnNotFound)

	empty, err := table.New("empty", table.NewNumeric("WS", []float64{math.NaN()}), table.NewNumeric("WD", []float64{10}))
	require.NoError(t, err)
	_, err = Polar(empty, "", "", small)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDirectionLabels(t *testing.T) {
	labels := DirectionLabels()
	require.Len(t, labels, 8)
	want := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	for i, d := range labels {
		assert.Equal(t, want[i], d.Label)
		assert.Equal(t, 22.5*float64(i), d.Degrees)
	}
}

func TestRadialTicks(t *testing.T) {
	assert.Equal(t, []float64{2, 5, 7}, RadialTicks(10))
	assert.Equal(t, []float64{0, 1, 2}, RadialTicks(3.5))
}

func TestPolarProjection(t *testing.T) {
	x, y := polarXY(2, 0)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 2, y, 1e-12)
	x, y = polarXY(2, 90)
	assert.InDelta(t, 2, x, 1e-12)
	assert.InDelta(t, 0, y, 1e-12)
	x, _ = polarXY(1, 270)
	assert.InDelta(t, -1, x, 1e-12)
}

func TestCoolWarm(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 59, G: 76, B: 192, A: 255}, CoolWarm(-1))
	assert.Equal(t, color.RGBA{R: 221, G: 221, B: 221, A: 255}, CoolWarm(0))
	assert.Equal(t, color.RGBA{R: 180, G: 4, B: 38, A: 255}, CoolWarm(1))
	assert.Equal(t, CoolWarm(1), CoolWarm(3))
	assert.Equal(t, nanColor, CoolWarm(math.NaN()))
}

func TestBins(t *testing.T) {
	vals := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}
	div, cnt := Bins(vals, 5)
	require.Len(t, div, 6)
	require.Len(t, cnt, 5)
	assert.Equal(t, 0.0, div[0])
	assert.Equal(t, []float64{2, 2, 2, 2, 2}, cnt)

	div, cnt = Bins([]float64{4, 4, 4}, 3)
	assert.Len(t, div, 4)
	total := 0.0
	for _, c := range cnt {
		total += c
	}
	assert.Equal(t, 3.0, total)
}

func TestBubbleWidth(t *testing.T) {
	assert.Equal(t, 10.0, BubbleWidth(10, 10))
	assert.Equal(t, 1.0, BubbleWidth(5, 0.1))
	assert.Equal(t, 40.0, BubbleWidth(1e6, 10))
	assert.Equal(t, 1.0, BubbleWidth(math.NaN(), 10))
}
