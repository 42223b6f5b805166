package analysis

import (
	"math"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// FilterRange keeps the rows whose value in column lies in [lo, hi]. Missing
// values never match. Use math.Inf for an open bound.
func FilterRange(t *table.Table, column string, lo, hi float64) (*table.Table, error) {
	if t == nil {
		return nil, ErrNotTabular
	}
	c, err := numericColumn(t, column)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(lo) {
		lo = math.Inf(-1)
	}
	if math.IsNaN(hi) {
		hi = math.Inf(1)
	}
	keep := make([]bool, c.Len())
	for i, v := range c.Nums {
		keep[i] = !c.IsNull(i) && v >= lo && v <= hi
	}
	return t.Filter(keep), nil
}

// Range returns the smallest and largest value of a numeric column, the
// bounds a range filter starts from. ok is false when there are no values.
func Range(t *table.Table, column string) (lo, hi float64, ok bool, err error) {
	if t == nil {
		return 0, 0, false, ErrNotTabular
	}
	c, err := numericColumn(t, column)
	if err != nil {
		return 0, 0, false, err
	}
	vals := c.Values()
	if len(vals) == 0 {
		return 0, 0, false, nil
	}
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, true, nil
}
