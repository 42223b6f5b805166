package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// DefaultZScoreColumns are the irradiance fields and ambient temperature.
var DefaultZScoreColumns = []string{"GHI", "DNI", "DHI", "Tamb"}

// DefaultZThreshold is the |z| above which a row is an outlier.
const DefaultZThreshold = 3.0

// OutlierColumn is the name of the flag column added by ZScores.
const OutlierColumn = "outlier"

// ZScores returns a copy of t with a <col>_zscore column holding
// |x - mean| / std (sample std) for each named column, and an outlier column
// set to 1 where the row's largest Z-score is strictly greater than
// threshold, 0 otherwise. Missing inputs give missing Z-scores and do not
// count toward the maximum. A column without variance is a *NoVarianceError.
func ZScores(t *table.Table, columns []string, threshold float64) (*table.Table, error) {
	if t == nil {
		return nil, ErrNotTabular
	}
	if len(t.NumericNames()) == 0 {
		return nil, ErrNoNumericColumns
	}
	if len(columns) == 0 {
		columns = DefaultZScoreColumns
	}
	src := make([]*table.Column, len(columns))
	for i, name := range columns {
		c, err := numericColumn(t, name)
		if err != nil {
			return nil, err
		}
		src[i] = c
	}
	if t.Empty() {
		return nil, ErrEmptyTable
	}

	n := t.Len()
	maxZ := make([]float64, n)
	seen := make([]bool, n)
	out := t
	for _, c := range src {
		vals := c.Values()
		sd := sampleStd(vals)
		if math.IsNaN(sd) || sd == 0 {
			return nil, &NoVarianceError{Column: c.Name, Count: len(vals)}
		}
		mean, _ := stats.Mean(vals)
		z := make([]float64, n)
		for i, v := range c.Nums {
			if c.IsNull(i) {
				z[i] = math.NaN()
				continue
			}
			z[i] = math.Abs(v-mean) / sd
			if !seen[i] || z[i] > maxZ[i] {
				maxZ[i] = z[i]
				seen[i] = true
			}
		}
		zc := table.NewNumeric(c.Name+"_zscore", z)
		var err error
		if out, err = out.WithColumn(zc); err != nil {
			return nil, err
		}
	}

	flags := make([]float64, n)
	for i := range flags {
		if seen[i] && maxZ[i] > threshold {
			flags[i] = 1
		}
	}
	return out.WithColumn(table.NewNumeric(OutlierColumn, flags))
}

// CountOutliers counts rows flagged by ZScores.
func CountOutliers(t *table.Table) int {
	c, ok := t.Col(OutlierColumn)
	if !ok {
		return 0
	}
	n := 0
	for i, v := range c.Nums {
		if !c.IsNull(i) && v == 1 {
			n++
		}
	}
	return n
}
