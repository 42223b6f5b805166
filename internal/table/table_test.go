package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func sample(t *testing.T) *Table {
	t.Helper()
	ts := []time.Time{
		time.Date(2021, 8, 9, 0, 1, 0, 0, time.UTC),
		time.Date(2021, 8, 9, 0, 2, 0, 0, time.UTC),
		{},
	}
	tb, err := New("site",
		NewDatetime("Timestamp", ts),
		NewNumeric("GHI", []float64{1, math.NaN(), 3}),
		NewText("Comments", []*string{nil, strp("dusty"), nil}),
	)
	require.NoError(t, err)
	return tb
}

func TestNewRejectsBadShapes(t *testing.T) {
	_, err := New("x", NewNumeric("a", []float64{1}), NewNumeric("b", []float64{1, 2}))
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = New("x", NewNumeric("a", []float64{1}), NewNumeric("a", []float64{2}))
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestNullTracking(t *testing.T) {
	tb := sample(t)
	ghi, ok := tb.Col("GHI")
	require.True(t, ok)
	assert.Equal(t, 1, ghi.Missing())
	assert.Equal(t, []float64{1, 3}, ghi.Values())

	ts, _ := tb.Col("Timestamp")
	assert.True(t, ts.IsNull(2))
	assert.Equal(t, "2021-08-09 00:01:00", ts.Format(0))

	cm, _ := tb.Col("Comments")
	assert.Equal(t, 2, cm.Missing())
	assert.Equal(t, "dusty", cm.Format(1))
	assert.Equal(t, "", cm.Format(0))
}

func TestFilterAndTakeDoNotAlias(t *testing.T) {
	tb := sample(t)
	out := tb.Filter([]bool{true, false, true})
	require.Equal(t, 2, out.Len())

	ghi, _ := out.Col("GHI")
	ghi.Nums[0] = 99

	orig, _ := tb.Col("GHI")
	assert.Equal(t, 1.0, orig.Nums[0])
}

func TestWithColumnReplacesAndCopies(t *testing.T) {
	tb := sample(t)
	out, err := tb.WithColumn(NewNumeric("GHI", []float64{7, 8, 9}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Timestamp", "GHI", "Comments"}, out.Names())

	got, _ := out.Col("GHI")
	assert.Equal(t, []float64{7, 8, 9}, got.Nums)
	orig, _ := tb.Col("GHI")
	assert.Equal(t, 1.0, orig.Nums[0])

	_, err = tb.WithColumn(NewNumeric("short", []float64{1}))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSelectDropAndFind(t *testing.T) {
	tb := sample(t)
	sel, err := tb.Select("GHI")
	require.NoError(t, err)
	assert.Equal(t, []string{"GHI"}, sel.Names())

	_, err = tb.Select("DNI")
	assert.Error(t, err)

	dropped := tb.Drop("Comments")
	assert.Equal(t, []string{"Timestamp", "GHI"}, dropped.Names())
	assert.Equal(t, []string{"GHI"}, dropped.NumericNames())

	c, ok := tb.FindFold("comments", "comment")
	require.True(t, ok)
	assert.Equal(t, "Comments", c.Name)
}

func TestEmpty(t *testing.T) {
	tb, err := New("empty")
	require.NoError(t, err)
	assert.True(t, tb.Empty())
	assert.Equal(t, 0, tb.Len())
}
