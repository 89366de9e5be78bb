// Package chartstate derives chart configurations from a closed set of edit
// commands. Reduce never mutates its input.
package chartstate

import (
	"fmt"

	"github.com/KaramelBytes/datalens/internal/analysis"
)

// Command is one edit to a ChartConfig. The set is closed: only the types in
// this package implement it.
type Command interface {
	apply(analysis.ChartConfig) analysis.ChartConfig
	fmt.Stringer
}

// SetAxis picks the group key and value columns. Empty fields are left as is.
type SetAxis struct {
	GroupKey string
	Value    string
}

// SetAggregation switches the fold mode.
type SetAggregation struct {
	Mode analysis.AggregationMode
}

// SetSort changes ordering. Empty fields are left as is.
type SetSort struct {
	Key       analysis.SortKey
	Direction analysis.SortDirection
}

// AddFilter appends a row predicate.
type AddFilter struct {
	Filter analysis.Filter
}

// ResetFilters drops every filter.
type ResetFilters struct{}

// SetLimits changes the point cap and the collation locale. Zero fields are
// left as is.
type SetLimits struct {
	MaxPoints int
	Locale    string
}

func (c SetAxis) apply(cfg analysis.ChartConfig) analysis.ChartConfig {
	if c.GroupKey != "" {
		cfg.GroupKeyColumn = c.GroupKey
	}
	if c.Value != "" {
		cfg.ValueColumn = c.Value
	}
	return cfg
}

func (c SetAggregation) apply(cfg analysis.ChartConfig) analysis.ChartConfig {
	cfg.Aggregation = c.Mode
	return cfg
}

func (c SetSort) apply(cfg analysis.ChartConfig) analysis.ChartConfig {
	if c.Key != "" {
		cfg.SortKey = c.Key
	}
	if c.Direction != "" {
		cfg.SortDirection = c.Direction
	}
	return cfg
}

func (c AddFilter) apply(cfg analysis.ChartConfig) analysis.ChartConfig {
	cfg.Filters = append(cfg.Filters, c.Filter)
	return cfg
}

func (ResetFilters) apply(cfg analysis.ChartConfig) analysis.ChartConfig {
	cfg.Filters = nil
	return cfg
}

func (c SetLimits) apply(cfg analysis.ChartConfig) analysis.ChartConfig {
	if c.MaxPoints > 0 {
		cfg.MaxPoints = c.MaxPoints
	}
	if c.Locale != "" {
		cfg.Locale = c.Locale
	}
	return cfg
}

func (c SetAxis) String() string {
	return fmt.Sprintf("set-axis(%s, %s)", c.GroupKey, c.Value)
}
func (c SetAggregation) String() string { return fmt.Sprintf("set-aggregation(%s)", c.Mode) }
func (c SetSort) String() string {
	return fmt.Sprintf("set-sort(%s, %s)", c.Key, c.Direction)
}
func (c AddFilter) String() string {
	return fmt.Sprintf("add-filter(%s %s %s)", c.Filter.Column, c.Filter.Op, c.Filter.Value)
}
func (ResetFilters) String() string { return "reset-filters" }
func (c SetLimits) String() string {
	return fmt.Sprintf("set-limits(%d, %s)", c.MaxPoints, c.Locale)
}

// Default returns the starting configuration: sum, sorted by value descending.
func Default() analysis.ChartConfig {
	return analysis.ChartConfig{
		Aggregation:   analysis.AggSum,
		SortKey:       analysis.SortByValue,
		SortDirection: analysis.SortDesc,
		Locale:        "en",
		MaxPoints:     analysis.DefaultMaxPoints,
	}
}

// Reduce returns the configuration that results from applying cmd to cfg. A
// nil command returns a copy of cfg.
func Reduce(cfg analysis.ChartConfig, cmd Command) analysis.ChartConfig {
	next := cfg.Clone()
	if cmd == nil {
		return next
	}
	return cmd.apply(next)
}

// Apply folds cmds over cfg left to right and validates the result.
func Apply(cfg analysis.ChartConfig, cmds ...Command) (analysis.ChartConfig, error) {
	for _, c := range cmds {
		cfg = Reduce(cfg, c)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("apply commands: %w", err)
	}
	return cfg, nil
}
