package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

var nan = math.NaN()

func numCol(name string, vals ...float64) *table.Column { return table.NewNumeric(name, vals) }

func strCol(name string, vals ...string) *table.Column {
	ptrs := make([]*string, len(vals))
	for i := range vals {
		if vals[i] == "" {
			continue
		}
		ptrs[i] = &vals[i]
	}
	return table.NewText(name, ptrs)
}

func mustTable(t *testing.T, cols ...*table.Column) *table.Table {
	t.Helper()
	tb, err := table.New("test", cols...)
	require.NoError(t, err)
	return tb
}

func TestSummarize(t *testing.T) {
	tb := mustTable(t,
		numCol("GHI", 1, 2, 3, 4, 100),
		strCol("Site", "A", "B", "A", "", "A"),
	)
	s, err := Summarize(tb)
	require.NoError(t, err)
	assert.False(t, s.Empty)
	assert.Equal(t, 5, s.Rows)
	assert.Equal(t, 2, s.Cols)
	require.Len(t, s.Numeric, 1)

	r := s.Numeric[0]
	assert.Equal(t, 5, r.Count)
	assert.InDelta(t, 22, r.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(1902.5), r.Std, 1e-9)
	assert.Equal(t, 1.0, r.Min)
	assert.Equal(t, 2.0, r.Q25)
	assert.Equal(t, 3.0, r.Median)
	assert.Equal(t, 4.0, r.Q75)
	assert.Equal(t, 100.0, r.Max)

	require.Len(t, s.NonNumeric, 1)
	assert.Equal(t, 4, s.NonNumeric[0].Count)
	assert.Equal(t, 2, s.NonNumeric[0].Unique)
	assert.Equal(t, CategoryCount{Value: "A", Count: 3}, s.NonNumeric[0].Top[0])
	assert.Equal(t, 1, s.Missing["Site"])

	md := s.Markdown()
	assert.Contains(t, md, "[NUMERIC COLUMNS]")
	assert.Contains(t, md, "| GHI | 5 | 22 |")
	assert.Contains(t, md, "- Site: 1 (20.0%)")
}

func TestSummarizeEmptyAndNil(t *testing.T) {
	empty, err := table.New("empty")
	require.NoError(t, err)
	s, err := Summarize(empty)
	require.NoError(t, err)
	assert.True(t, s.Empty)
	assert.Empty(t, s.Numeric)
	assert.Contains(t, s.Markdown(), "empty")

	noRows := mustTable(t, numCol("GHI"))
	s, err = Summarize(noRows)
	require.NoError(t, err)
	assert.True(t, s.Empty)

	_, err = Summarize(nil)
	assert.ErrorIs(t, err, ErrNotTabular)
}

func TestSummaryEncodesUndefinedStats(t *testing.T) {
	tb := mustTable(t, numCol("GHI", 5), numCol("DNI", nan))
	s, err := Summarize(tb)
	require.NoError(t, err)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"std":null`)

	y, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(y), "column: DNI")
}

func TestFenceKnownValues(t *testing.T) {
	f, ok := Fence([]float64{1, 2, 3, 4, 100})
	require.True(t, ok)
	assert.Equal(t, IQRFence{Q1: 2, Q3: 4, IQR: 2, Lower: -1, Upper: 7}, f)

	_, ok = Fence(nil)
	assert.False(t, ok)
}

func TestCheckOutliers(t *testing.T) {
	tb := mustTable(t,
		numCol("GHI", 1, 2, 3, 4, 100),
		numCol("DNI", 1, 2, nan, 4, 3),
		strCol("Site", "a", "b", "c", "d", "e"),
	)
	got, err := CheckOutliers(tb)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, got["GHI"])
	assert.Empty(t, got["DNI"])
	_, hasText := got["Site"]
	assert.False(t, hasText)

	_, err = CheckOutliers(nil)
	assert.ErrorIs(t, err, ErrNotTabular)
	_, err = OutlierReport(nil)
	assert.ErrorIs(t, err, ErrNotTabular)
}

func TestCheckOutliersBoundaryInclusive(t *testing.T) {
	// Q1=2, Q3=4 for both, so the fence is [-1, 7] and both extremes sit on it.
	tb := mustTable(t,
		numCol("hi", 1, 2, 3, 4, 7),
		numCol("lo", -1, 2, 3, 4, 5),
	)
	got, err := CheckOutliers(tb)
	require.NoError(t, err)
	assert.Empty(t, got["hi"])
	assert.Empty(t, got["lo"])
}

func TestCheckMissingValues(t *testing.T) {
	tb := mustTable(t, numCol("GHI", 1, nan, nan), strCol("Comments", "", "x", ""))
	got, err := CheckMissingValues(tb)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"GHI": 2, "Comments": 2}, got)

	_, err = CheckMissingValues(nil)
	assert.ErrorIs(t, err, ErrNotTabular)
}

func TestCorrelationMatrix(t *testing.T) {
	tb := mustTable(t,
		numCol("GHI", 1, 2, 3, 4),
		numCol("DNI", 2, 4, 6, 8),
		numCol("DHI", 4, 3, 2, 1),
		numCol("TModA", 5, 5, 5, 5),
		numCol("TModB", 1, nan, 2, 5),
	)
	m, err := CorrelationMatrix(tb)
	require.NoError(t, err)
	assert.Equal(t, DefaultCorrColumns, m.Columns)

	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a, b := m.Values[i][j], m.Values[j][i]
			if math.IsNaN(a) {
				assert.True(t, math.IsNaN(b))
				continue
			}
			assert.Equal(t, a, b)
			assert.True(t, a >= -1 && a <= 1)
		}
	}
	for i, name := range m.Columns {
		if name == "TModA" {
			assert.True(t, math.IsNaN(m.Values[i][i]))
			continue
		}
		assert.Equal(t, 1.0, m.Values[i][i])
	}

	r, ok := m.At("GHI", "DNI")
	require.True(t, ok)
	assert.InDelta(t, 1, r, 1e-12)
	r, _ = m.At("GHI", "DHI")
	assert.InDelta(t, -1, r, 1e-12)
	r, _ = m.At("GHI", "TModA")
	assert.True(t, math.IsNaN(r))

	// GHI vs TModB uses rows 0, 2, 3 only.
	r, _ = m.At("GHI", "TModB")
	assert.InDelta(t, corrOf([]float64{1, 3, 4}, []float64{1, 2, 5}), r, 1e-12)

	pairs := m.Pairs()
	require.NotEmpty(t, pairs)
	assert.InDelta(t, 1, math.Abs(pairs[0].R), 1e-12)
	assert.Contains(t, m.Markdown(), "NaN")
}

func corrOf(x, y []float64) float64 {
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(len(x))
	my /= float64(len(y))
	var sxy, sxx, syy float64
	for i := range x {
		sxy += (x[i] - mx) * (y[i] - my)
		sxx += (x[i] - mx) * (x[i] - mx)
		syy += (y[i] - my) * (y[i] - my)
	}
	return sxy / math.Sqrt(sxx*syy)
}

func TestCorrelationMatrixErrors(t *testing.T) {
	tb := mustTable(t, numCol("GHI", 1, 2), strCol("Site", "a", "b"))

	_, err := CorrelationMatrix(tb, "GHI", "DNI")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	var ce *ColumnError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "DNI", ce.Column)

	_, err = CorrelationMatrix(tb, "GHI", "Site")
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = CorrelationMatrix(mustTable(t, strCol("Site", "a", "b")))
	assert.ErrorIs(t, err, ErrNoNumericColumns)
	_, err = CorrelationMatrix(nil)
	assert.ErrorIs(t, err, ErrNotTabular)

	_, err = CorrelationMatrix(mustTable(t, numCol("GHI")), "GHI")
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestZScores(t *testing.T) {
	tb := mustTable(t,
		numCol("GHI", 1, 2, 3, 4, 100),
		numCol("Tamb", 20, 21, nan, 22, 23),
	)
	out, err := ZScores(tb, []string{"GHI", "Tamb"}, DefaultZThreshold)
	require.NoError(t, err)
	assert.Equal(t, []string{"GHI", "Tamb", "GHI_zscore", "Tamb_zscore", "outlier"}, out.Names())
	assert.Equal(t, []string{"GHI", "Tamb"}, tb.Names(), "input must be untouched")

	z, _ := out.Col("GHI_zscore")
	assert.InDelta(t, 78/math.Sqrt(1902.5), z.Nums[4], 1e-12)
	tz, _ := out.Col("Tamb_zscore")
	assert.True(t, tz.IsNull(2))
	assert.Equal(t, 0, CountOutliers(out))
}

func TestZScoresThresholdBoundary(t *testing.T) {
	tb := mustTable(t, numCol("GHI", 1, 2, 3, 4, 100))
	base, err := ZScores(tb, []string{"GHI"}, DefaultZThreshold)
	require.NoError(t, err)
	z, _ := base.Col("GHI_zscore")
	maxZ := z.Nums[4]

	atThreshold, err := ZScores(tb, []string{"GHI"}, maxZ)
	require.NoError(t, err)
	assert.Equal(t, 0, CountOutliers(atThreshold))

	below, err := ZScores(tb, []string{"GHI"}, maxZ-1e-9)
	require.NoError(t, err)
	flags, _ := below.Col(OutlierColumn)
	assert.Equal(t, []float64{0, 0, 0, 0, 1}, flags.Nums)
}

func TestZScoresErrors(t *testing.T) {
	tb := mustTable(t, numCol("GHI", 5, 5, 5), numCol("DNI", 1, nan, nan), strCol("Site", "a", "b", "c"))

	_, err := ZScores(tb, []string{"GHI"}, 3)
	var nv *NoVarianceError
	require.True(t, errors.As(err, &nv))
	assert.Equal(t, "GHI", nv.Column)
	assert.Contains(t, err.Error(), "no variance")

	_, err = ZScores(tb, []string{"DNI"}, 3)
	require.True(t, errors.As(err, &nv))
	assert.Equal(t, 1, nv.Count)

	_, err = ZScores(tb, []string{"Site"}, 3)
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = ZScores(tb, nil, 3)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = ZScores(mustTable(t, strCol("Site", "a", "b")), nil, 3)
	assert.ErrorIs(t, err, ErrNoNumericColumns)
	_, err = ZScores(nil, nil, 3)
	assert.ErrorIs(t, err, ErrNotTabular)
}

func cleanFixture(t *testing.T) *table.Table {
	return mustTable(t,
		numCol("GHI", 1, 2, nan, 4, 100),
		strCol("Site", "", "A", "", "B", ""),
		numCol("Comments", nan, nan, nan, nan, nan),
		numCol("Broken", nan, nan, nan, nan, nan),
	)
}

func TestClean(t *testing.T) {
	tb := cleanFixture(t)
	res, err := Clean(tb)
	require.NoError(t, err)

	assert.Equal(t, 5, res.RowsIn)
	assert.Equal(t, 4, res.RowsOut)
	assert.Equal(t, []string{"Comments"}, res.DroppedColumns)
	assert.Equal(t, []string{"GHI", "Site", "Broken"}, res.Table.Names())
	assert.Equal(t, map[string]int{"GHI": 1}, res.Imputed)
	assert.Equal(t, map[string]int{"Site": 2}, res.Filled)
	assert.Equal(t, map[string]int{"Site": 1}, res.Unresolved)
	assert.Equal(t, []string{"cannot impute Broken: no values"}, res.Warnings)

	ghi, _ := res.Table.Col("GHI")
	assert.Equal(t, []float64{1, 2, 26.75, 4}, ghi.Nums)
	assert.Zero(t, ghi.Missing())

	site, _ := res.Table.Col("Site")
	assert.True(t, site.IsNull(0))
	assert.Equal(t, []string{"", "A", "A", "B"}, site.Strs)

	broken, _ := res.Table.Col("Broken")
	assert.Equal(t, 4, broken.Missing())

	// source unchanged
	src, _ := tb.Col("GHI")
	assert.True(t, src.IsNull(2))
	assert.Equal(t, 5, tb.Len())
	_, ok := tb.Col("Comments")
	assert.True(t, ok)

	assert.Contains(t, res.Summary(), "Rows: 5 -> 4 (removed 1)")
}

func TestCleanTwiceRecomputesFence(t *testing.T) {
	first, err := Clean(cleanFixture(t))
	require.NoError(t, err)
	second, err := Clean(first.Table)
	require.NoError(t, err)
	// [1, 2, 26.75, 4] has Q1=1.75 and Q3=9.6875, so 26.75 now falls outside.
	assert.Equal(t, 3, second.RowsOut)
	ghi, _ := second.Table.Col("GHI")
	assert.Equal(t, []float64{1, 2, 4}, ghi.Nums)
}

func TestCleanKeepsNonEmptyComments(t *testing.T) {
	tb := mustTable(t, numCol("GHI", 1, 2, 3), strCol("comments", "", "wiped", ""))
	res, err := Clean(tb)
	require.NoError(t, err)
	assert.Empty(t, res.DroppedColumns)
	c, _ := res.Table.Col("comments")
	assert.Equal(t, []string{"", "wiped", "wiped"}, c.Strs)

	_, err = Clean(nil)
	assert.ErrorIs(t, err, ErrNotTabular)
}

func TestForwardFill(t *testing.T) {
	c := strCol("Site", "", "A", "", "B")
	out, unresolved := ForwardFill(c)
	assert.Equal(t, 1, unresolved)
	assert.True(t, out.IsNull(0))
	assert.Equal(t, []string{"", "A", "A", "B"}, out.Strs)
	assert.Equal(t, 2, c.Missing(), "input must be untouched")
}

func TestResampleDaily(t *testing.T) {
	at := func(d, h int) time.Time { return time.Date(2021, 1, d, h, 0, 0, 0, time.UTC) }
	tb := mustTable(t,
		table.NewDatetime("Timestamp", []time.Time{at(1, 10), at(1, 12), at(3, 9), at(3, 10), {}}),
		numCol("GHI", 10, 20, 30, nan, 99),
	)
	out, err := ResampleDaily(tb, "", "GHI")
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())

	days, _ := out.Col("Date")
	assert.Equal(t, at(2, 0), days.Times[1])
	ghi, _ := out.Col("GHI")
	assert.Equal(t, 15.0, ghi.Nums[0])
	assert.True(t, ghi.IsNull(1))
	assert.Equal(t, 30.0, ghi.Nums[2])

	_, err = ResampleDaily(tb, "GHI")
	assert.ErrorIs(t, err, ErrNotDatetime)
	_, err = ResampleDaily(tb, "When")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func parseTimes(t *testing.T, layout string, values ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, len(values))
	for i, v := range values {
		ts, err := time.Parse(layout, v)
		require.NoError(t, err)
		out[i] = ts
	}
	return out
}

func TestResampleDailyHalfHourOffset(t *testing.T) {
	// each Parse of a +05:30 stamp yields its own zone value
	times := parseTimes(t, time.RFC3339,
		"2021-08-09T10:00:00+05:30", "2021-08-10T10:00:00+05:30", "2021-08-11T10:00:00+05:30")
	tb := mustTable(t, table.NewDatetime("Timestamp", times), numCol("GHI", 10, 20, 30))
	out, err := ResampleDaily(tb, "", "GHI")
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())
	ghi, _ := out.Col("GHI")
	assert.Equal(t, []float64{10, 20, 30}, ghi.Nums)
	days, _ := out.Col("Date")
	assert.Equal(t, time.Date(2021, 8, 10, 0, 0, 0, 0, time.UTC), days.Times[1])
}

func TestResampleDailyMixedOffsets(t *testing.T) {
	// a DST change: the same local calendar day under two offsets
	times := parseTimes(t, time.RFC3339,
		"2021-03-27T12:00:00+01:00", "2021-03-28T01:00:00+01:00", "2021-03-28T12:00:00+02:00", "2021-03-30T09:00:00+02:00")
	tb := mustTable(t, table.NewDatetime("Timestamp", times), numCol("GHI", 1, 2, 4, 8))
	out, err := ResampleDaily(tb, "", "GHI")
	require.NoError(t, err)
	require.Equal(t, 4, out.Len())
	ghi, _ := out.Col("GHI")
	assert.Equal(t, 1.0, ghi.Nums[0])
	assert.Equal(t, 3.0, ghi.Nums[1])
	assert.True(t, ghi.IsNull(2))
	assert.Equal(t, 8.0, ghi.Nums[3])
}

func site(t *testing.T, name string, ghi ...float64) Site {
	dni := make([]float64, len(ghi))
	dhi := make([]float64, len(ghi))
	for i, v := range ghi {
		dni[i] = v / 2
		dhi[i] = v / 4
	}
	return Site{Name: name, Table: mustTable(t, numCol("GHI", ghi...), numCol("DNI", dni...), numCol("DHI", dhi...))}
}

func TestCompare(t *testing.T) {
	cmp, err := Compare([]Site{
		site(t, "benin", 10, 20),
		site(t, "togo", 30, 40),
		site(t, "sierraleone", 1, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"togo", "benin", "sierraleone"}, cmp.Ranking)
	assert.Equal(t, "togo", cmp.Best())
	assert.Equal(t, "benin", cmp.Sites[0].Site)
	assert.Equal(t, 15.0, cmp.Sites[0].Stats["GHI"].Mean)
	assert.InDelta(t, math.Sqrt(50), cmp.Sites[0].Stats["GHI"].Std, 1e-12)
	assert.Equal(t, 7.5, cmp.Sites[0].Stats["DNI"].Mean)

	md := cmp.Markdown()
	assert.Contains(t, md, "Recommended site: togo")
	assert.True(t, strings.Index(md, "1. togo") < strings.Index(md, "2. benin"))
}

func TestCompareRequiresEverySite(t *testing.T) {
	_, err := Compare(nil)
	assert.ErrorIs(t, err, ErrIncompleteSites)

	_, err = Compare([]Site{site(t, "benin", 1, 2), {Name: "togo"}})
	assert.ErrorIs(t, err, ErrIncompleteSites)

	bad := Site{Name: "x", Table: mustTable(t, numCol("GHI", 1))}
	_, err = Compare([]Site{bad})
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestFilterRange(t *testing.T) {
	tb := mustTable(t, numCol("GHI", 1, nan, 5, 10), strCol("Site", "a", "b", "c", "d"))
	out, err := FilterRange(tb, "GHI", 1, 5)
	require.NoError(t, err)
	s, _ := out.Col("Site")
	assert.Equal(t, []string{"a", "c"}, s.Strs)

	out, err = FilterRange(tb, "GHI", nan, nan)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())

	lo, hi, ok, err := Range(tb, "GHI")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 10.0, hi)

	_, err = FilterRange(tb, "Site", 0, 1)
	assert.ErrorIs(t, err, ErrNotNumeric)
}
