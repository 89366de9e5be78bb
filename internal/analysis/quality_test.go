package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityScore(t *testing.T) {
	cases := []struct {
		name string
		s    *Summary
		want int
	}{
		{"nil", nil, 0},
		{"no columns", &Summary{TotalRows: 10}, 0},
		{"no rows", &Summary{TotalColumns: 3}, 0},
		{"clean", &Summary{TotalRows: 10, TotalColumns: 10}, 100},
		{"missing", &Summary{TotalRows: 10, TotalColumns: 10, MissingValues: 10}, 91},
		{"duplicates", &Summary{TotalRows: 10, TotalColumns: 10, Duplicates: 2}, 90},
		{"both", &Summary{TotalRows: 10, TotalColumns: 10, MissingValues: 10, Duplicates: 2}, 81},
		{"saturated", &Summary{TotalRows: 2, TotalColumns: 1, MissingValues: 5, Duplicates: 5}, 0},
		{"negative counts clamp", &Summary{TotalRows: 4, TotalColumns: 1, MissingValues: -3}, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := QualityScore(tc.s)
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestQualityScoreMonotonic(t *testing.T) {
	prev := 101
	for m := 0; m <= 50; m++ {
		got := QualityScore(&Summary{TotalRows: 10, TotalColumns: 5, MissingValues: m, Duplicates: 1})
		assert.LessOrEqual(t, got, prev, "missing=%d", m)
		prev = got
	}
	prev = 101
	for d := 0; d <= 10; d++ {
		got := QualityScore(&Summary{TotalRows: 10, TotalColumns: 5, MissingValues: 3, Duplicates: d})
		assert.LessOrEqual(t, got, prev, "duplicates=%d", d)
		prev = got
	}
}

func TestQualityIssues(t *testing.T) {
	assert.Empty(t, QualityIssues(&Summary{TotalRows: 3, TotalColumns: 2}))
	assert.Nil(t, QualityIssues(nil))
	assert.Equal(t, []string{
		"3 missing values (50.0% of cells)",
		"1 duplicate rows (33.3% of rows)",
	}, QualityIssues(&Summary{TotalRows: 3, TotalColumns: 2, MissingValues: 3, Duplicates: 1}))
}
