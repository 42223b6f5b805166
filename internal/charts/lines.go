package charts

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// SeriesColumns are the fields of the time series and area charts.
var SeriesColumns = []string{"GHI", "DNI", "DHI", "Tamb"}

// Lines draws one line per column over time, or over the row index when the
// table has no time column.
func Lines(t *table.Table, columns []string, opt Options) (Figure, error) {
	return lineChart(t, "", columns, false, opt)
}

// TimeSeries draws GHI, DNI, DHI and Tamb over time.
func TimeSeries(t *table.Table, opt Options) (Figure, error) {
	return lineChart(t, "Time Series Plot of GHI, DNI, DHI, and Tamb", SeriesColumns, false, opt)
}

// Area draws GHI, DNI, DHI and Tamb over time as filled areas.
func Area(t *table.Table, opt Options) (Figure, error) {
	return lineChart(t, "Area Plot of GHI, DNI, DHI, and Tamb", SeriesColumns, true, opt)
}

func lineChart(t *table.Table, title string, columns []string, fill bool, opt Options) (Figure, error) {
	opt = opt.normalized()
	if t == nil {
		return nil, analysis.ErrNotTabular
	}
	if len(columns) == 0 {
		return nil, ErrNoData
	}
	ts, _ := timeAxis(t, opt.TimeColumn)
	var series []chart.Series
	var ys [][]float64
	for i, name := range columns {
		st := lineStyle(colorAt(i))
		if fill {
			st.FillColor = colorAt(i).WithAlpha(100)
		}
		s, err := lineSeries(t, name, name, ts, nil, st)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
		ys = append(ys, seriesY(s))
	}
	if fill {
		ys = append(ys, []float64{0})
	}
	if title == "" {
		title = strings.Join(columns, ", ")
	}
	return timeChart(title, ts != nil, series, span(ys...), opt), nil
}

// CleaningImpact draws ModA and ModB separately for rows where the Cleaning
// flag is 1 (clean) and 0 (dirty).
func CleaningImpact(t *table.Table, opt Options) (Figure, error) {
	opt = opt.normalized()
	flag, err := numeric(t, "Cleaning")
	if err != nil {
		return nil, err
	}
	var clean, dirty []int
	for i, v := range flag.Nums {
		if flag.IsNull(i) {
			continue
		}
		switch v {
		case 1:
			clean = append(clean, i)
		case 0:
			dirty = append(dirty, i)
		}
	}
	ts, _ := timeAxis(t, opt.TimeColumn)
	groups := []struct {
		label string
		rows  []int
	}{{"Clean", clean}, {"Dirty", dirty}}

	var series []chart.Series
	var ys [][]float64
	idx := 0
	for _, g := range groups {
		for _, name := range []string{"ModA", "ModB"} {
			st := lineStyle(colorAt(idx))
			idx++
			if len(g.rows) == 0 {
				if _, err := numeric(t, name); err != nil {
					return nil, err
				}
				continue
			}
			s, err := lineSeries(t, name, g.label+" "+name, ts, g.rows, st)
			if errors.Is(err, ErrNoData) {
				continue
			}
			if err != nil {
				return nil, err
			}
			series = append(series, s)
			ys = append(ys, seriesY(s))
		}
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("ModA/ModB: %w", ErrNoData)
	}
	return timeChart("Impact of Cleaning on Sensor Readings", ts != nil, series, span(ys...), opt), nil
}

func timeChart(title string, timed bool, series []chart.Series, yr *chart.ContinuousRange, opt Options) Figure {
	ch := newChart(title, opt.Width, opt.Height)
	ch.XAxis = chart.XAxis{Name: "Time"}
	if timed {
		ch.XAxis.ValueFormatter = chart.TimeValueFormatterWithFormat("2006-01-02")
	} else {
		ch.XAxis.Name = "Row"
	}
	ch.YAxis = chart.YAxis{Name: "Value", Range: yr}
	ch.Series = series
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return chartFigure{ch: ch}
}

func seriesY(s chart.Series) []float64 {
	switch v := s.(type) {
	case chart.TimeSeries:
		return v.YValues
	case chart.ContinuousSeries:
		return v.YValues
	}
	return nil
}

// DailyMeansMax and DailyMeansStep fix the y axis of the daily comparison.
const (
	DailyMeansMax  = 600
	DailyMeansStep = 100
)

// DailyMeans draws one line per site of an already resampled daily column.
// Each site table must carry a Date column, as produced by
// analysis.ResampleDaily. The y axis spans 0 to 600 with a tick every 100.
func DailyMeans(sites []analysis.Site, column string, opt Options) (Figure, error) {
	opt = opt.normalized()
	var series []chart.Series
	for i, s := range sites {
		if s.Table == nil {
			return nil, fmt.Errorf("%s: %w", s.Name, analysis.ErrIncompleteSites)
		}
		date, ok := timeAxis(s.Table, "Date")
		if !ok {
			return nil, &analysis.ColumnError{Column: "Date", Err: analysis.ErrNotDatetime}
		}
		ls, err := lineSeries(s.Table, column, s.Name, date, nil, lineStyle(colorAt(i)))
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", s.Name, err)
		}
		series = append(series, ls)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: %w", column, ErrNoData)
	}
	var ticks []chart.Tick
	for v := 0; v <= DailyMeansMax; v += DailyMeansStep {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	ch := newChart(fmt.Sprintf("Daily Average %s Comparison", column), opt.Width, opt.Height)
	ch.XAxis = chart.XAxis{Name: "Date", ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02")}
	ch.YAxis = chart.YAxis{
		Name:  fmt.Sprintf("Average %s (W/m²)", column),
		Range: &chart.ContinuousRange{Min: 0, Max: DailyMeansMax},
		Ticks: ticks,
	}
	ch.Series = series
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return chartFigure{ch: ch}, nil
}

// MeanBars draws the mean of each compared irradiance field per site, one bar
// chart per field stacked vertically.
func MeanBars(cmp *analysis.Comparison, opt Options) (Figure, error) {
	opt = opt.normalized()
	if cmp == nil || len(cmp.Sites) == 0 {
		return nil, ErrNoData
	}
	g := newGrid("", len(cmp.Columns), 1, opt)
	for i, col := range cmp.Columns {
		var bars []chart.Value
		top := 0.0
		for j, s := range cmp.Sites {
			m := s.Stats[col].Mean
			if math.IsNaN(m) {
				m = 0
			}
			top = math.Max(top, m)
			bars = append(bars, chart.Value{
				Label: s.Site,
				Value: m,
				Style: chart.Style{FillColor: colorAt(j), StrokeColor: colorAt(j)},
			})
		}
		if top <= 0 {
			top = 1
		}
		g.Set(i, 0, barFigure{bc: chart.BarChart{
			Title:      fmt.Sprintf("Average %s by Site", col),
			Width:      g.CellWidth,
			Height:     g.CellHeight,
			Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
			BarWidth:   max(g.CellWidth/(2*len(bars)+1), 10),
			YAxis: chart.YAxis{
				Name:  fmt.Sprintf("Average %s (W/m²)", col),
				Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			},
			Bars: bars,
		}})
	}
	return g, nil
}
