package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// IQRFence is the Tukey fence of a numeric column.
type IQRFence struct {
	Q1    float64 `json:"q1" yaml:"q1"`
	Q3    float64 `json:"q3" yaml:"q3"`
	IQR   float64 `json:"iqr" yaml:"iqr"`
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Fence computes Q1 - 1.5*IQR and Q3 + 1.5*IQR over the given values.
// Quartiles interpolate linearly between closest ranks. ok is false when
// there are no values.
func Fence(vals []float64) (f IQRFence, ok bool) {
	if len(vals) == 0 {
		return IQRFence{}, false
	}
	sorted := sortedCopy(vals)
	f.Q1 = quantile(sorted, 0.25)
	f.Q3 = quantile(sorted, 0.75)
	f.IQR = f.Q3 - f.Q1
	f.Lower = f.Q1 - 1.5*f.IQR
	f.Upper = f.Q3 + 1.5*f.IQR
	return f, true
}

// Contains reports whether v lies within the fence, boundaries included.
func (f IQRFence) Contains(v float64) bool {
	return v >= f.Lower && v <= f.Upper
}

// ColumnOutliers lists the rows of one column that fall outside its fence.
type ColumnOutliers struct {
	Column string   `json:"column" yaml:"column"`
	Fence  IQRFence `json:"fence" yaml:"fence"`
	Rows   []int    `json:"rows" yaml:"rows"`
}

// CheckOutliers returns, per numeric column, the row indices whose value is
// strictly outside the IQR fence. Missing values are never flagged.
func CheckOutliers(t *table.Table) (map[string][]int, error) {
	report, err := OutlierReport(t)
	if err != nil {
		return nil, err
	}
	out := map[string][]int{}
	for _, co := range report {
		out[co.Column] = co.Rows
	}
	return out, nil
}

// OutlierReport is CheckOutliers with the fence of every column attached,
// in column order. Columns without values are skipped.
func OutlierReport(t *table.Table) ([]ColumnOutliers, error) {
	if t == nil {
		return nil, ErrNotTabular
	}
	var res []ColumnOutliers
	for _, c := range t.Columns {
		if c.Kind != table.Numeric {
			continue
		}
		f, ok := Fence(c.Values())
		if !ok {
			continue
		}
		co := ColumnOutliers{Column: c.Name, Fence: f, Rows: []int{}}
		for i, v := range c.Nums {
			if c.IsNull(i) {
				continue
			}
			if !f.Contains(v) {
				co.Rows = append(co.Rows, i)
			}
		}
		res = append(res, co)
	}
	return res, nil
}

func sortedCopy(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

// quantile interpolates linearly at position q*(n-1) of sorted data.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
