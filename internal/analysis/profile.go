package analysis

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

// Report bundles every derived view of a dataset.
type Report struct {
	Name             string          `json:"name,omitempty"`
	Summary          Summary         `json:"summary"`
	Quality          int             `json:"quality_score"`
	Issues           []string        `json:"quality_issues,omitempty"`
	Cols             []ColumnSummary `json:"columns"`
	QuickNumeric     string          `json:"quick_numeric,omitempty"`
	QuickCategorical string          `json:"quick_categorical,omitempty"`
	Corr             *CorrMatrix     `json:"correlation,omitempty"`
	HistogramColumn  string          `json:"histogram_column,omitempty"`
	Histogram        []HistogramBin  `json:"histogram,omitempty"`
	CategoryColumn   string          `json:"category_column,omitempty"`
	Categories       []CategoryCount `json:"categories,omitempty"`
	Warnings         []string        `json:"warnings,omitempty"`
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string     `json:"name"`
	Kind    ColumnType `json:"kind"`
	NonNull int        `json:"non_null"`
	Missing int        `json:"missing"`
	Unique  int        `json:"unique"`
	// Numeric stats
	Min    float64 `json:"min,omitempty"`
	Max    float64 `json:"max,omitempty"`
	Mean   float64 `json:"mean,omitempty"`
	Median float64 `json:"median,omitempty"`
	Std    float64 `json:"std,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

const columnTopValues = 8

// Profile computes the full report for ds.
func Profile(ds *dataset.Dataset, opt Options) (*Report, error) {
	if ds == nil {
		return nil, invalidf("dataset is nil")
	}
	opt = opt.normalized()
	sum, err := ComputeSummary(ds)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	rep := &Report{
		Name:    ds.Name,
		Summary: sum,
		Quality: QualityScore(&sum),
		Issues:  QualityIssues(&sum),
	}
	types := ClassifyColumns(ds, opt)
	for _, c := range ds.Columns {
		rep.Cols = append(rep.Cols, summarizeColumn(ds.Rows, c.Name, types[c.Name]))
	}

	if name, ok := QuickNumeric(ds, opt); ok {
		rep.QuickNumeric = name
	}
	if name, ok := QuickCategorical(ds, opt); ok {
		rep.QuickCategorical = name
	}

	rep.HistogramColumn = rep.QuickNumeric
	if opt.HistogramColumn != "" {
		if _, ok := ds.Column(opt.HistogramColumn); !ok {
			return nil, invalidf("histogram column %q not found", opt.HistogramColumn)
		}
		rep.HistogramColumn = opt.HistogramColumn
	}
	if rep.HistogramColumn != "" {
		rep.Histogram = HistogramForColumn(ds.Rows, rep.HistogramColumn, opt.HistogramBins)
	}

	rep.CategoryColumn = rep.QuickCategorical
	if opt.CategoryColumn != "" {
		if _, ok := ds.Column(opt.CategoryColumn); !ok {
			return nil, invalidf("category column %q not found", opt.CategoryColumn)
		}
		rep.CategoryColumn = opt.CategoryColumn
	}
	if rep.CategoryColumn != "" {
		rep.Categories = CategoryCounts(ds.Rows, rep.CategoryColumn, opt.TopCategories)
	}

	if opt.Correlations {
		rep.Corr = Correlate(ds, opt)
	}
	if len(ds.Rows) == 0 {
		rep.Warnings = append(rep.Warnings, "dataset has no rows")
	}
	return rep, nil
}

func summarizeColumn(rows []dataset.Row, name string, kind ColumnType) ColumnSummary {
	s := ColumnSummary{Name: name, Kind: kind}
	seen := make(map[string]struct{})
	var nums stats.Float64Data
	for _, r := range rows {
		v := r.Get(name)
		if v.IsMissing() {
			s.Missing++
			continue
		}
		s.NonNull++
		seen[v.String()] = struct{}{}
		if kind == TypeNumeric {
			if x, ok := v.Float(); ok {
				nums = append(nums, x)
			}
		}
	}
	s.Unique = len(seen)
	switch kind {
	case TypeNumeric:
		if len(nums) == 0 {
			break
		}
		s.Min, _ = stats.Min(nums)
		s.Max, _ = stats.Max(nums)
		s.Mean, _ = stats.Mean(nums)
		s.Median, _ = stats.Median(nums)
		if len(nums) > 1 {
			s.Std, _ = stats.StandardDeviationSample(nums)
		}
	case TypeCategorical:
		tops := CategoryCounts(rows, name, len(seen)+1)
		filtered := tops[:0]
		for _, t := range tops {
			if t.Name != BlankCategory {
				filtered = append(filtered, t)
			}
		}
		sort.SliceStable(filtered, func(i, j int) bool {
			if filtered[i].Value == filtered[j].Value {
				return filtered[i].Name < filtered[j].Name
			}
			return filtered[i].Value > filtered[j].Value
		})
		if len(filtered) > columnTopValues {
			filtered = filtered[:columnTopValues]
		}
		s.TopValues = filtered
	}
	return s
}
