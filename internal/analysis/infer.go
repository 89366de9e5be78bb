package analysis

import (
	"math"
	"strings"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

// ColumnType is the inferred role of a column.
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeText        ColumnType = "text"
)

// declaredNumeric reports whether an upstream type hint names a number type.
func declaredNumeric(declared string) bool {
	t := strings.ToLower(declared)
	return strings.Contains(t, "num") || strings.Contains(t, "int")
}

// numericMatches counts sampled cells that are numeric-coercible.
func numericMatches(sample []dataset.Row, column string) int {
	n := 0
	for _, r := range sample {
		v := r.Get(column)
		if v.IsMissing() {
			continue
		}
		if _, ok := v.Float(); ok {
			n++
		}
	}
	return n
}

// passesNumericThreshold applies matches >= max(minMatches, ratio*len(sample)).
func passesNumericThreshold(sample []dataset.Row, column string, opt Options) bool {
	need := math.Max(float64(opt.NumericMinMatches), opt.NumericRatio*float64(len(sample)))
	return float64(numericMatches(sample, column)) >= need
}

// distinctNonEmpty counts distinct non-missing string coercions in the sample.
func distinctNonEmpty(sample []dataset.Row, column string) int {
	seen := make(map[string]struct{})
	for _, r := range sample {
		v := r.Get(column)
		if v.IsMissing() {
			continue
		}
		seen[v.String()] = struct{}{}
	}
	return len(seen)
}

// IsNumericColumn classifies col as numeric from its declared type or from the
// sampled rows.
func IsNumericColumn(col dataset.Column, sample []dataset.Row, opt Options) bool {
	opt = opt.normalized()
	if declaredNumeric(col.Type) {
		return true
	}
	return passesNumericThreshold(sample, col.Name, opt)
}

// IsCategoricalCandidate reports whether col qualifies as the quick-chart category:
// not numeric, with a bounded number of distinct sampled values.
func IsCategoricalCandidate(col dataset.Column, sample []dataset.Row, opt Options) bool {
	opt = opt.normalized()
	if IsNumericColumn(col, sample, opt) {
		return false
	}
	d := distinctNonEmpty(sample, col.Name)
	return d >= opt.CategoricalMinDistinct && d <= opt.CategoricalMaxDistinct
}

// ClassifyColumns returns the inferred type of every column, keyed by name.
func ClassifyColumns(ds *dataset.Dataset, opt Options) map[string]ColumnType {
	opt = opt.normalized()
	out := make(map[string]ColumnType, len(ds.Columns))
	sample := dataset.Head(ds.Rows, opt.SampleRows)
	for _, c := range ds.Columns {
		switch {
		case IsNumericColumn(c, sample, opt):
			out[c.Name] = TypeNumeric
		case IsCategoricalCandidate(c, sample, opt):
			out[c.Name] = TypeCategorical
		default:
			out[c.Name] = TypeText
		}
	}
	return out
}

// QuickNumeric returns the first numeric column in column order.
// The order is the tie-break; callers rely on it being reproducible.
func QuickNumeric(ds *dataset.Dataset, opt Options) (string, bool) {
	opt = opt.normalized()
	sample := dataset.Head(ds.Rows, opt.QuickSampleRows)
	for _, c := range ds.Columns {
		if IsNumericColumn(c, sample, opt) {
			return c.Name, true
		}
	}
	return "", false
}

// QuickCategorical returns the first categorical-eligible column in column order.
func QuickCategorical(ds *dataset.Dataset, opt Options) (string, bool) {
	opt = opt.normalized()
	sample := dataset.Head(ds.Rows, opt.QuickSampleRows)
	for _, c := range ds.Columns {
		if IsCategoricalCandidate(c, sample, opt) {
			return c.Name, true
		}
	}
	return "", false
}

// EligibleNumeric lists columns passing the sampled numeric-coercibility rule,
// ignoring declared types.
func EligibleNumeric(ds *dataset.Dataset, opt Options) []string {
	opt = opt.normalized()
	sample := dataset.Head(ds.Rows, opt.SampleRows)
	var out []string
	for _, c := range ds.Columns {
		if passesNumericThreshold(sample, c.Name, opt) {
			out = append(out, c.Name)
		}
	}
	return out
}
