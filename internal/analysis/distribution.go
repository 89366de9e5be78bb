package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

// BlankCategory labels missing values in category tables.
const BlankCategory = "(blank)"

// HistogramBin is one equal-width interval and its member count.
type HistogramBin struct {
	Label string  `json:"bin"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// CategoryCount is one row of a frequency table.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// BuildHistogram bins values into equal-width intervals over [min, max].
// Intervals are closed-open except the last, which also holds max. NaN values are
// ignored; an empty input yields nil.
func BuildHistogram(values []float64, bins int) []HistogramBin {
	if bins <= 0 {
		bins = DefaultOptions().HistogramBins
	}
	clean := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	lo, _ := stats.Min(clean)
	hi, _ := stats.Max(clean)
	width := (hi - lo) / float64(bins)
	if width <= 0 {
		width = 1
	}
	out := make([]HistogramBin, bins)
	for i := range out {
		lower := lo + float64(i)*width
		upper := lo + float64(i+1)*width
		out[i] = HistogramBin{Label: fmt.Sprintf("%.1f - %.1f", lower, upper), Lower: lower, Upper: upper}
	}
	for _, v := range clean {
		idx := int(math.Floor((v - lo) / width))
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}

// HistogramForColumn bins the numeric-coercible cells of column.
func HistogramForColumn(rows []dataset.Row, column string, bins int) []HistogramBin {
	return BuildHistogram(numericSeries(rows, column), bins)
}

// CategoryCounts tallies the string coercion of column, sorted by count
// descending with ties in first-seen order, truncated to topN.
func CategoryCounts(rows []dataset.Row, column string, topN int) []CategoryCount {
	if topN <= 0 {
		topN = DefaultOptions().TopCategories
	}
	idx := make(map[string]int)
	var out []CategoryCount
	for _, r := range rows {
		v := r.Get(column)
		name := BlankCategory
		if !v.IsMissing() {
			name = v.String()
		}
		i, ok := idx[name]
		if !ok {
			i = len(out)
			idx[name] = i
			out = append(out, CategoryCount{Name: name})
		}
		out[i].Value++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
