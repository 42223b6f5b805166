package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// DefaultCorrColumns are the irradiance and module temperature fields.
var DefaultCorrColumns = []string{"GHI", "DNI", "DHI", "TModA", "TModB"}

// CorrMatrix holds a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Values  [][]float64 `json:"values" yaml:"values"` // row-major, Values[i][j]
}

// At returns the coefficient for a pair of column names.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

// PairCorr is one off-diagonal entry.
type PairCorr struct {
	A, B string
	R    float64
}

// Pairs lists off-diagonal entries ordered by |r| descending. NaN entries
// are left out.
func (m *CorrMatrix) Pairs() []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai := math.Abs(pairs[i].R)
		aj := math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	return pairs
}

// CorrelationMatrix computes Pearson coefficients between the named numeric
// columns, using for each pair only the rows where both are present. With no
// names DefaultCorrColumns is used. A column without variance correlates as
// NaN with every column, itself included.
func CorrelationMatrix(t *table.Table, columns ...string) (*CorrMatrix, error) {
	if t == nil {
		return nil, ErrNotTabular
	}
	if len(t.NumericNames()) == 0 {
		return nil, ErrNoNumericColumns
	}
	if len(columns) == 0 {
		columns = DefaultCorrColumns
	}
	cols := make([]*table.Column, len(columns))
	for i, name := range columns {
		c, err := numericColumn(t, name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	if t.Empty() {
		return nil, ErrEmptyTable
	}

	n := len(cols)
	m := &CorrMatrix{Columns: append([]string(nil), columns...), Values: make([][]float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		if hasVariance(cols[i].Values()) {
			m.Values[i][i] = 1
		} else {
			m.Values[i][i] = math.NaN()
		}
		for j := i + 1; j < n; j++ {
			r := pairwise(cols[i], cols[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

func pairwise(a, b *table.Column) float64 {
	var xs, ys []float64
	for k := 0; k < a.Len(); k++ {
		if a.IsNull(k) || b.IsNull(k) {
			continue
		}
		xs = append(xs, a.Nums[k])
		ys = append(ys, b.Nums[k])
	}
	if !hasVariance(xs) || !hasVariance(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	return math.Max(-1, math.Min(1, r))
}

func hasVariance(vals []float64) bool {
	if len(vals) < 2 {
		return false
	}
	for _, v := range vals[1:] {
		if v != vals[0] {
			return true
		}
	}
	return false
}

// Markdown renders the matrix as a table followed by the strongest pairs.
func (m *CorrMatrix) Markdown() string {
	var b strings.Builder
	b.WriteString("[CORRELATIONS]\n| |")
	for _, c := range m.Columns {
		b.WriteString(" " + safeName(c) + " |")
	}
	b.WriteString("\n|---|")
	for range m.Columns {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for i, row := range m.Values {
		b.WriteString("| " + safeName(m.Columns[i]) + " |")
		for _, v := range row {
			if math.IsNaN(v) {
				b.WriteString(" NaN |")
				continue
			}
			b.WriteString(fmt.Sprintf(" %.2f |", v))
		}
		b.WriteString("\n")
	}
	pairs := m.Pairs()
	if len(pairs) > 0 {
		b.WriteString("\n[STRONGEST PAIRS]\n")
		maxp := 10
		if len(pairs) < maxp {
			maxp = len(pairs)
		}
		for _, p := range pairs[:maxp] {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}
	return b.String()
}
