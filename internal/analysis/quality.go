package analysis

import (
	"fmt"
	"math"
)

const (
	missingWeight   = 0.9
	duplicateWeight = 0.5
)

// QualityScore maps a Summary to an integer in [0,100]. It never fails: absent
// input, degenerate shapes, and any fault resolve to 0.
func QualityScore(s *Summary) (score int) {
	defer func() {
		if recover() != nil {
			score = 0
		}
	}()
	if s == nil || s.TotalColumns <= 0 || s.TotalRows <= 0 {
		return 0
	}
	totalCells := float64(s.TotalRows) * float64(s.TotalColumns)
	missingPenalty := 0.0
	if totalCells > 0 {
		missingPenalty = clamp01(float64(s.MissingValues)/totalCells) * missingWeight
	}
	duplicatePenalty := clamp01(float64(s.Duplicates)/float64(s.TotalRows)) * duplicateWeight

	raw := 100 * (1 - missingPenalty - duplicatePenalty)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	return int(math.Round(clamp(raw, 0, 100)))
}

func clamp01(x float64) float64 { return clamp(x, 0, 1) }

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// QualityIssues lists the problems behind a score below 100, in fixed order.
func QualityIssues(s *Summary) []string {
	if s == nil || s.TotalRows <= 0 || s.TotalColumns <= 0 {
		return nil
	}
	var out []string
	if s.MissingValues > 0 {
		pct := float64(s.MissingValues) * 100 / (float64(s.TotalRows) * float64(s.TotalColumns))
		out = append(out, fmt.Sprintf("%d missing values (%.1f%% of cells)", s.MissingValues, pct))
	}
	if s.Duplicates > 0 {
		pct := float64(s.Duplicates) * 100 / float64(s.TotalRows)
		out = append(out, fmt.Sprintf("%d duplicate rows (%.1f%% of rows)", s.Duplicates, pct))
	}
	return out
}
