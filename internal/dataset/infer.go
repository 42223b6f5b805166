package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// naTokens are cell values read as missing, in addition to the empty string.
var naTokens = map[string]struct{}{
	"na": {}, "n/a": {}, "nan": {}, "-nan": {}, "null": {}, "none": {}, "#n/a": {}, "<na>": {},
}

func isNA(v string) bool {
	if v == "" {
		return true
	}
	_, ok := naTokens[strings.ToLower(v)]
	return ok
}

// buildTable infers a declared kind per column and converts the raw cells.
// A column is numeric when every non-missing cell parses as a number,
// datetime when every non-missing cell parses as a timestamp, text otherwise.
// A column without any value is numeric and entirely missing.
func buildTable(name string, header []string, records [][]string, opt Options) *table.Table {
	ncol := len(header)
	cols := make([]*table.Column, 0, ncol)
	seen := map[string]int{}
	for j := 0; j < ncol; j++ {
		clean, unit := splitUnits(strings.TrimSpace(header[j]))
		if clean == "" {
			clean = "Unnamed: " + strconv.Itoa(j)
		}
		if n := seen[clean]; n > 0 {
			seen[clean] = n + 1
			clean = clean + "." + strconv.Itoa(n)
		} else {
			seen[clean] = 1
		}
		cells := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				cells[i] = strings.TrimSpace(rec[j])
			}
		}
		cols = append(cols, inferColumn(clean, unit, cells, opt))
	}
	t, err := table.New(name, cols...)
	if err != nil {
		// names are de-duplicated and all columns share len(records)
		panic(err)
	}
	return t
}

func inferColumn(name, unit string, cells []string, opt Options) *table.Column {
	allNum, allTime, hasValue := true, true, false
	for _, v := range cells {
		if isNA(v) {
			continue
		}
		hasValue = true
		if unit == "" && strings.Contains(v, "%") {
			unit = "%"
		}
		if allNum {
			if _, ok := parseNumeric(v, opt); !ok {
				allNum = false
			}
		}
		if allTime {
			if _, ok := parseTimeMaybe(v); !ok {
				allTime = false
			}
		}
	}
	switch {
	case !hasValue || allNum:
		vals := make([]float64, len(cells))
		outUnit := unit
		for i, v := range cells {
			if isNA(v) {
				vals[i] = math.NaN()
				continue
			}
			x, _ := parseNumeric(v, opt)
			if opt.UnitNormalize && unit != "" {
				if nx, nu, ok := normalizeUnit(x, unit, opt); ok {
					x = nx
					outUnit = nu
				}
			}
			vals[i] = x
		}
		c := table.NewNumeric(name, vals)
		c.Unit = outUnit
		return c
	case allTime:
		vals := make([]time.Time, len(cells))
		for i, v := range cells {
			if isNA(v) {
				continue
			}
			vals[i], _ = parseTimeMaybe(v)
		}
		c := table.NewDatetime(name, vals)
		c.Unit = unit
		return c
	default:
		vals := make([]*string, len(cells))
		for i := range cells {
			if isNA(cells[i]) {
				continue
			}
			vals[i] = &cells[i]
		}
		c := table.NewText(name, vals)
		c.Unit = unit
		return c
	}
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02T15:04", "2006-01-02T15:04:05",
	"2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func normalizeUnit(x float64, unit string, opt Options) (float64, string, bool) {
	if opt.UnitTargets == nil {
		return x, unit, false
	}
	target, ok := opt.UnitTargets[unit]
	if !ok {
		return x, unit, false
	}
	switch unit + ">" + target {
	case "°F>°C":
		return (x - 32) * 5.0 / 9.0, target, true
	case "kW/m²>W/m²", "kW/m2>W/m2":
		return x * 1000, target, true
	case "km/h>m/s":
		return x / 3.6, target, true
	case "kPa>hPa":
		return x * 10, target, true
	default:
		return x, unit, false
	}
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., GHI (W/m²)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Tamb [°C]
	{regexp.MustCompile(`^(.*?)[_\s-]+(W/m²|W/m2|kW/m²|kW/m2|°[CF]|m/s|km/h|hPa|kPa|mm|%)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
