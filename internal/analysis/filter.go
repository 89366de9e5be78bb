package analysis

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

// FilterOp is a row predicate operator.
type FilterOp string

const (
	OpEq       FilterOp = "eq"
	OpNeq      FilterOp = "neq"
	OpContains FilterOp = "contains"
	OpGt       FilterOp = "gt"
	OpGte      FilterOp = "gte"
	OpLt       FilterOp = "lt"
	OpLte      FilterOp = "lte"
)

// Filter keeps rows whose Column satisfies Op against Value.
type Filter struct {
	Column string   `json:"column" yaml:"column"`
	Op     FilterOp `json:"op" yaml:"op"`
	Value  string   `json:"value" yaml:"value"`
}

func (f Filter) Validate() error {
	if strings.TrimSpace(f.Column) == "" {
		return invalidf("filter column is empty")
	}
	switch f.Op {
	case OpEq, OpNeq, OpContains:
	case OpGt, OpGte, OpLt, OpLte:
		if _, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64); err != nil {
			return invalidf("filter %s %s needs a numeric operand, got %q", f.Column, f.Op, f.Value)
		}
	default:
		return invalidf("unknown filter op %q", f.Op)
	}
	return nil
}

// Match evaluates the filter against one row. Equality compares string
// coercions; ordering compares numeric coercions and fails for non-numeric cells.
func (f Filter) Match(r dataset.Row) bool {
	v := r.Get(f.Column)
	switch f.Op {
	case OpEq:
		return v.String() == f.Value
	case OpNeq:
		return v.String() != f.Value
	case OpContains:
		return strings.Contains(strings.ToLower(v.String()), strings.ToLower(f.Value))
	}
	x, ok := v.Float()
	if !ok {
		return false
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil {
		return false
	}
	switch f.Op {
	case OpGt:
		return x > y
	case OpGte:
		return x >= y
	case OpLt:
		return x < y
	case OpLte:
		return x <= y
	}
	return false
}

// ParseFilter reads "col=val", "col!=val", "col~val", "col>=n", "col>n",
// "col<=n", "col<n".
func ParseFilter(expr string) (Filter, error) {
	ops := []struct {
		tok string
		op  FilterOp
	}{
		{"!=", OpNeq}, {">=", OpGte}, {"<=", OpLte}, {"=", OpEq}, {"~", OpContains}, {">", OpGt}, {"<", OpLt},
	}
	for _, o := range ops {
		if i := strings.Index(expr, o.tok); i > 0 {
			f := Filter{
				Column: strings.TrimSpace(expr[:i]),
				Op:     o.op,
				Value:  strings.TrimSpace(expr[i+len(o.tok):]),
			}
			return f, f.Validate()
		}
	}
	return Filter{}, invalidf("cannot parse filter %q", expr)
}

func matchAll(filters []Filter, r dataset.Row) bool {
	for _, f := range filters {
		if !f.Match(r) {
			return false
		}
	}
	return true
}
