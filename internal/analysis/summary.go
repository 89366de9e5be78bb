package analysis

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

// Summary holds dataset-level counts. It is recomputed from row contents and
// never mutated after construction.
type Summary struct {
	TotalRows     int    `json:"total_rows"`
	TotalColumns  int    `json:"total_columns"`
	MissingValues int    `json:"missing_values"`
	Duplicates    int    `json:"duplicates"`
	MemoryBytes   int    `json:"memory_bytes"`
	MemoryUsage   string `json:"memory_usage"`
}

// ComputeSummary derives the Summary of ds.
func ComputeSummary(ds *dataset.Dataset) (Summary, error) {
	if ds == nil {
		return Summary{}, invalidf("dataset is nil")
	}
	names := ds.ColumnNames()
	s := Summary{TotalColumns: len(names)}
	if len(ds.Rows) == 0 {
		s.MemoryUsage = FormatBytes(0)
		return s, nil
	}
	s.TotalRows = len(ds.Rows)

	seen := make(map[string]struct{}, len(ds.Rows))
	considered := 0
	for _, r := range ds.Rows {
		rowMissing := 0
		for _, name := range names {
			if r.Get(name).IsMissing() {
				rowMissing++
			}
		}
		s.MissingValues += rowMissing
		if rowMissing == len(names) {
			// all-null rows never count as duplicates of each other
			continue
		}
		key, err := canonicalKey(r, names)
		if err != nil {
			return Summary{}, fmt.Errorf("canonicalize row: %w", err)
		}
		considered++
		seen[key] = struct{}{}
	}
	s.Duplicates = considered - len(seen)

	b, err := json.Marshal(ds.Rows)
	if err != nil {
		return Summary{}, fmt.Errorf("encode rows: %w", err)
	}
	s.MemoryBytes = len(b)
	s.MemoryUsage = FormatBytes(s.MemoryBytes)
	return s, nil
}

// canonicalKey encodes the row's values in declared column order, so two rows with
// equal content produce the same key regardless of map iteration order.
func canonicalKey(r dataset.Row, names []string) (string, error) {
	vals := make([]dataset.Value, len(names))
	for i, name := range names {
		vals[i] = r.Get(name)
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatBytes renders n with 1024-based B/KB/MB buckets.
func FormatBytes(n int) string {
	const kb = 1024
	const mb = 1024 * 1024
	switch {
	case n < kb:
		return fmt.Sprintf("%d B", n)
	case n < mb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	}
}
