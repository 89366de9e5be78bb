package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// parseCell types one raw text cell.
func parseCell(raw string, opt Options) dataset.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return dataset.Null()
	}
	if f, ok := parseNumber(s, opt); ok {
		return dataset.Number(f)
	}
	switch strings.ToLower(s) {
	case "true":
		return dataset.Bool(true)
	case "false":
		return dataset.Bool(false)
	}
	if isDate(s) {
		return dataset.Date(s)
	}
	return dataset.String(s)
}

func parseNumber(s string, opt Options) (float64, bool) {
	if opt.DecimalSeparator != 0 || opt.ThousandsSeparator != 0 {
		return parseLocaleNumber(s, opt.DecimalSeparator, opt.ThousandsSeparator)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseLocaleNumber reads numbers written with explicit separators. A zero dec
// is inferred from the last ',' or '.' in the text.
func parseLocaleNumber(s string, dec, thou rune) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00a0", " ")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec = ','
		case cpos >= 0 && dpos < 0 && thou != ',':
			dec = ','
		default:
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

func isDate(s string) bool {
	for _, l := range dateLayouts {
		if _, err := time.Parse(l, s); err == nil {
			return true
		}
	}
	return false
}

// cleanHeader trims whitespace and a leading byte order mark.
func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}
