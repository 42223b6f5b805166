package analysis

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

var (
	// ErrNotTabular is returned when an operation receives no table at all.
	ErrNotTabular = errors.New("input is not a table")
	// ErrEmptyTable is returned by operations that need at least one row.
	ErrEmptyTable = errors.New("table is empty")
	// ErrNoNumericColumns is returned when nothing numeric is left to analyze.
	ErrNoNumericColumns = errors.New("no numeric columns")
	ErrColumnNotFound   = errors.New("column not found")
	ErrNotNumeric       = errors.New("column is not numeric")
	ErrNotDatetime      = errors.New("column is not a timestamp")
	// ErrIncompleteSites is returned when a site comparison lacks data for a site.
	ErrIncompleteSites = errors.New("provide data for every site")
)

// ColumnError ties a column-level failure to the column name.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string { return fmt.Sprintf("%s: %v", e.Column, e.Err) }

func (e *ColumnError) Unwrap() error { return e.Err }

// NoVarianceError indicates a column whose standard deviation is zero or
// undefined, so Z-scores cannot be computed.
type NoVarianceError struct {
	Column string
	Count  int
}

func (e *NoVarianceError) Error() string {
	if e.Count < 2 {
		return fmt.Sprintf("%s: no variance (%d value(s))", e.Column, e.Count)
	}
	return fmt.Sprintf("%s: no variance", e.Column)
}

// ImputeError indicates a numeric column with no values to take a mean from.
type ImputeError struct {
	Column string
}

func (e *ImputeError) Error() string {
	return fmt.Sprintf("cannot impute %s: no values", e.Column)
}

// numericColumn resolves name to a numeric column of t.
func numericColumn(t *table.Table, name string) (*table.Column, error) {
	c, ok := t.Col(name)
	if !ok {
		return nil, &ColumnError{Column: name, Err: ErrColumnNotFound}
	}
	if c.Kind != table.Numeric {
		return nil, &ColumnError{Column: name, Err: ErrNotNumeric}
	}
	return c, nil
}
