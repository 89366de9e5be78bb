package analysis

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

// UnknownGroup names the bucket of rows whose key is missing.
const UnknownGroup = "Unknown"

// Aggregate groups rows by cfg.GroupKeyColumn, folds cfg.ValueColumn per group,
// sorts, and truncates to the configured point limit.
//
// Pipeline: filter -> group -> aggregate -> sort -> limit. The limit applies after
// sorting, so the output is the top (or bottom) N in the active order.
//
// Aggregate does not panic. Input-shape problems return ErrInvalidInput; any
// internal fault is returned as *ComputationError.
func Aggregate(rows []dataset.Row, cfg ChartConfig) ([]AggregatedPoint, error) {
	if strings.TrimSpace(cfg.GroupKeyColumn) == "" {
		return nil, invalidf("group key column is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var out []AggregatedPoint
	err := Guard("aggregate", func() (err error) {
		out, err = aggregate(rows, cfg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type groupAcc struct {
	name  string
	sum   float64
	count int
	first float64
}

func aggregate(rows []dataset.Row, cfg ChartConfig) ([]AggregatedPoint, error) {
	groups := make(map[string]*groupAcc)
	var order []*groupAcc
	for _, r := range rows {
		if !matchAll(cfg.Filters, r) {
			continue
		}
		key := r.Get(cfg.GroupKeyColumn)
		name := UnknownGroup
		if !key.IsMissing() {
			name = key.String()
		}
		g := groups[name]
		x := r.Get(cfg.ValueColumn).NumberOr(0)
		if g == nil {
			g = &groupAcc{name: name, first: x}
			groups[name] = g
			order = append(order, g)
		}
		g.sum += x
		g.count++
	}

	points := make([]AggregatedPoint, len(order))
	for i, g := range order {
		points[i] = AggregatedPoint{Name: g.name, Value: foldValue(g, cfg.Aggregation), Size: g.count}
	}

	less, err := pointOrder(cfg)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(points, func(i, j int) bool { return less(points[i], points[j]) })

	limit := cfg.MaxPoints
	if limit <= 0 {
		limit = DefaultMaxPoints
	}
	if len(points) > limit {
		points = points[:limit]
	}
	return points, nil
}

func foldValue(g *groupAcc, mode AggregationMode) float64 {
	switch mode {
	case AggAverage:
		if g.count > 0 {
			return g.sum / float64(g.count)
		}
		return g.sum
	case AggCount:
		return float64(g.count)
	case AggNone:
		return g.first
	default:
		return g.sum
	}
}

// pointOrder builds the comparator for cfg. Name ordering uses a collator for
// cfg.Locale; collators are not safe for concurrent use, so each call gets its own.
func pointOrder(cfg ChartConfig) (func(a, b AggregatedPoint) bool, error) {
	desc := cfg.SortDirection == SortDesc
	if cfg.SortKey == SortByValue {
		return func(a, b AggregatedPoint) bool {
			if desc {
				return a.Value > b.Value
			}
			return a.Value < b.Value
		}, nil
	}
	tag := language.English
	if cfg.Locale != "" {
		t, err := language.Parse(cfg.Locale)
		if err != nil {
			return nil, invalidf("locale %q: %v", cfg.Locale, err)
		}
		tag = t
	}
	col := collate.New(tag)
	return func(a, b AggregatedPoint) bool {
		c := col.CompareString(a.Name, b.Name)
		if desc {
			return c > 0
		}
		return c < 0
	}, nil
}
