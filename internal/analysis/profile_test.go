package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

func TestProfileQuickPicksAndSections(t *testing.T) {
	ds := quickDataset()
	ds.Name = "sales.csv"
	rep, err := Profile(ds, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 30, rep.Summary.TotalRows)
	assert.Equal(t, 100, rep.Quality)
	assert.Equal(t, "sales", rep.HistogramColumn)
	assert.Equal(t, "id", rep.CategoryColumn)
	require.NotNil(t, rep.Corr)
	assert.Equal(t, []string{"sales", "score"}, rep.Corr.Columns)
	require.Len(t, rep.Cols, 5)
	assert.Equal(t, TypeNumeric, rep.Cols[3].Kind)
	assert.Equal(t, 0.0, rep.Cols[3].Min)
	assert.Equal(t, 29.0, rep.Cols[3].Max)
	assert.Equal(t, TypeCategorical, rep.Cols[2].Kind)
	assert.Len(t, rep.Cols[2].TopValues, 3)

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]", "File: sales.csv", "Rows: 30",
		"[DATA QUALITY]", "Score: 100/100", emptyIssues,
		"[SCHEMA]", "- sales: numeric",
		"[CORRELATIONS]", "- sales ~ score: r=-1.000",
		"[HISTOGRAM]", "Column: sales",
		"[CATEGORIES]", "Column: id",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "[NOTES]")
}

func TestProfileOverrides(t *testing.T) {
	opt := DefaultOptions()
	opt.HistogramColumn = "score"
	opt.CategoryColumn = "region"
	opt.Correlations = false
	rep, err := Profile(quickDataset(), opt)
	require.NoError(t, err)
	assert.Equal(t, "score", rep.HistogramColumn)
	assert.Equal(t, "region", rep.CategoryColumn)
	assert.Len(t, rep.Categories, 3)
	assert.Nil(t, rep.Corr)

	opt.HistogramColumn = "nope"
	_, err = Profile(quickDataset(), opt)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProfileEmptyStates(t *testing.T) {
	ds := &dataset.Dataset{Columns: cols("a")}
	rep, err := Profile(ds, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Quality)

	md := rep.Markdown()
	assert.Contains(t, md, emptyNumeric)
	assert.Contains(t, md, emptyCategorical)
	assert.Contains(t, md, emptyCorrelation)
	assert.Contains(t, md, "[NOTES]\n- dataset has no rows")

	_, err = Profile(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSeriesMarkdown(t *testing.T) {
	cfg := ChartConfig{GroupKeyColumn: "region", ValueColumn: "sales"}
	out := SeriesMarkdown(cfg, []AggregatedPoint{{Name: "a|b", Value: 2, Size: 2}})
	assert.True(t, strings.HasPrefix(out, "[CHART] sum of sales by region\n"))
	assert.Contains(t, out, "| a/b | 2 | 2 |")
	assert.Contains(t, SeriesMarkdown(cfg, nil), "(no data)")
}
