package dataset

import (
	"errors"
	"fmt"
	"os"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// Options controls how sensor files are read into tables.
type Options struct {
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Sheet selects the XLSX sheet by name; empty means the first sheet.
	Sheet string
	// Unit normalization: convert values to target units using simple mappings.
	UnitNormalize bool
	UnitTargets   map[string]string
}

// DefaultOptions returns reasonable defaults for sensor exports.
func DefaultOptions() Options {
	return Options{
		UnitNormalize: true,
		UnitTargets: map[string]string{
			"°F":    "°C",
			"kW/m²": "W/m²",
			"kW/m2": "W/m2",
			"km/h":  "m/s",
			"kPa":   "hPa",
		},
	}
}

// Loader reads one file format into a table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*table.Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no loader accepts the file.
var ErrUnsupported = errors.New("unsupported dataset format")

// Load reads a whole file into a table, choosing the loader by file name.
// Unknown extensions are read as CSV.
func Load(path string, opt Options) (*table.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, ErrUnsupported)
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return csvLoader{}.Load(path, opt)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
