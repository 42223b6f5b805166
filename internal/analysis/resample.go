package analysis

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// DefaultTimeColumn is the timestamp field of sensor exports.
const DefaultTimeColumn = "Timestamp"

// ResampleDaily averages the named numeric columns per calendar day of
// timeCol. The result has one row for every day from the first to the last
// timestamp; days without readings hold missing values. Rows with a missing
// timestamp are ignored. With no columns every numeric column is used.
// Days are the calendar dates as written, reported at UTC midnight.
func ResampleDaily(t *table.Table, timeCol string, columns ...string) (*table.Table, error) {
	if t == nil {
		return nil, ErrNotTabular
	}
	if timeCol == "" {
		timeCol = DefaultTimeColumn
	}
	ts, ok := t.Col(timeCol)
	if !ok {
		return nil, &ColumnError{Column: timeCol, Err: ErrColumnNotFound}
	}
	if ts.Kind != table.Datetime {
		return nil, &ColumnError{Column: timeCol, Err: ErrNotDatetime}
	}
	if len(columns) == 0 {
		columns = t.NumericNames()
	}
	src := make([]*table.Column, len(columns))
	for i, name := range columns {
		c, err := numericColumn(t, name)
		if err != nil {
			return nil, err
		}
		src[i] = c
	}

	var first, last time.Time
	for i, v := range ts.Times {
		if ts.IsNull(i) {
			continue
		}
		d := day(v)
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if last.IsZero() || d.After(last) {
			last = d
		}
	}
	if first.IsZero() {
		return nil, ErrEmptyTable
	}

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	slot := make(map[string]int, len(days))
	for i, d := range days {
		slot[d.Format(time.DateOnly)] = i
	}

	cols := []*table.Column{table.NewDatetime("Date", days)}
	for _, c := range src {
		buckets := make([][]float64, len(days))
		for i, v := range c.Nums {
			if c.IsNull(i) || ts.IsNull(i) {
				continue
			}
			k, ok := slot[day(ts.Times[i]).Format(time.DateOnly)]
			if !ok {
				continue
			}
			buckets[k] = append(buckets[k], v)
		}
		means := make([]float64, len(days))
		for k, b := range buckets {
			if len(b) == 0 {
				means[k] = math.NaN()
				continue
			}
			means[k], _ = stats.Mean(b)
		}
		out := table.NewNumeric(c.Name, means)
		out.Unit = c.Unit
		cols = append(cols, out)
	}
	return table.New(t.Name, cols...)
}

// day is the calendar date of t as written in its own offset, at UTC
// midnight. Readings that share a date but not a zone land on the same day.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
