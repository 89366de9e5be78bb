package analysis

import (
	"fmt"
	"strings"
)

const (
	emptyNumeric     = "No numeric column detected"
	emptyCategorical = "No categorical column detected"
	emptyIssues      = "No quality issues detected"
	emptyCorrelation = "Not enough numeric columns for correlations"
)

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	s := r.Summary
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.TotalRows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", s.TotalColumns))
	b.WriteString(fmt.Sprintf("Missing values: %d\n", s.MissingValues))
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n", s.Duplicates))
	b.WriteString(fmt.Sprintf("Memory: %s\n\n", s.MemoryUsage))

	b.WriteString("[DATA QUALITY]\n")
	b.WriteString(fmt.Sprintf("Score: %d/100\n", r.Quality))
	if len(r.Issues) == 0 {
		b.WriteString(emptyIssues + "\n")
	}
	for _, is := range r.Issues {
		b.WriteString("- ")
		b.WriteString(is)
		b.WriteString("\n")
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, unique %d)", safeName(c.Name), c.Kind, c.NonNull, missPct, c.Unique))
		switch c.Kind {
		case TypeNumeric:
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Median, c.Std))
			}
		case TypeCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Name), kv.Value))
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[CORRELATIONS]\n")
	if r.Corr == nil || len(r.Corr.Columns) < 2 {
		b.WriteString(emptyCorrelation + "\n")
	} else {
		for _, p := range r.Corr.TopPairs(10) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}

	b.WriteString("\n[HISTOGRAM]\n")
	if r.HistogramColumn == "" {
		b.WriteString(emptyNumeric + "\n")
	} else {
		b.WriteString(fmt.Sprintf("Column: %s\n", safeName(r.HistogramColumn)))
		peak := 0
		for _, bin := range r.Histogram {
			if bin.Count > peak {
				peak = bin.Count
			}
		}
		for _, bin := range r.Histogram {
			b.WriteString(fmt.Sprintf("- %s: %d %s\n", bin.Label, bin.Count, bar(bin.Count, peak, 30)))
		}
	}

	b.WriteString("\n[CATEGORIES]\n")
	if r.CategoryColumn == "" {
		b.WriteString(emptyCategorical + "\n")
	} else {
		b.WriteString(fmt.Sprintf("Column: %s\n", safeName(r.CategoryColumn)))
		for _, c := range r.Categories {
			b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(c.Name), c.Value))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SeriesMarkdown renders an aggregated series as a Markdown table.
func SeriesMarkdown(cfg ChartConfig, points []AggregatedPoint) string {
	var b strings.Builder
	mode := cfg.Aggregation
	if mode == "" {
		mode = AggSum
	}
	b.WriteString(fmt.Sprintf("[CHART] %s of %s by %s\n", mode, safeName(cfg.ValueColumn), safeName(cfg.GroupKeyColumn)))
	if len(points) == 0 {
		b.WriteString("(no data)\n")
		return b.String()
	}
	b.WriteString("| name | value | size |\n| --- | --- | --- |\n")
	for _, p := range points {
		b.WriteString(fmt.Sprintf("| %s | %.4g | %d |\n", safeVal(p.Name), p.Value, p.Size))
	}
	return b.String()
}

func bar(n, peak, width int) string {
	if peak <= 0 || n <= 0 {
		return ""
	}
	w := n * width / peak
	if w == 0 {
		w = 1
	}
	return strings.Repeat("#", w)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
