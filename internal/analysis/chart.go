package analysis

// AggregationMode selects how group members fold into one value.
type AggregationMode string

const (
	AggSum     AggregationMode = "sum"
	AggAverage AggregationMode = "average"
	AggCount   AggregationMode = "count"
	AggNone    AggregationMode = "none"
)

// SortKey selects the field points are ordered by.
type SortKey string

const (
	SortByName  SortKey = "name"
	SortByValue SortKey = "value"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// DefaultMaxPoints bounds the aggregated series handed to renderers.
const DefaultMaxPoints = 1000

// ChartConfig is the immutable input of Aggregate. The engine reads nothing
// besides this value and the rows it is given.
type ChartConfig struct {
	GroupKeyColumn string          `json:"group_key_column" yaml:"group_key_column"`
	ValueColumn    string          `json:"value_column" yaml:"value_column"`
	Aggregation    AggregationMode `json:"aggregation" yaml:"aggregation"`
	SortKey        SortKey         `json:"sort_key" yaml:"sort_key"`
	SortDirection  SortDirection   `json:"sort_direction" yaml:"sort_direction"`
	Filters        []Filter        `json:"filters,omitempty" yaml:"filters,omitempty"`
	// Locale is a BCP 47 tag used for name ordering; empty means "en".
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
	// MaxPoints overrides DefaultMaxPoints when positive.
	MaxPoints int `json:"max_points,omitempty" yaml:"max_points,omitempty"`
}

// AggregatedPoint is one group of the aggregated series. Size is the member count.
type AggregatedPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Size  int     `json:"size"`
}

// Validate rejects enum values outside the closed sets. Empty fields are allowed
// and take their defaults.
func (c ChartConfig) Validate() error {
	switch c.Aggregation {
	case "", AggSum, AggAverage, AggCount, AggNone:
	default:
		return invalidf("unknown aggregation %q", c.Aggregation)
	}
	switch c.SortKey {
	case "", SortByName, SortByValue:
	default:
		return invalidf("unknown sort key %q", c.SortKey)
	}
	switch c.SortDirection {
	case "", SortAsc, SortDesc:
	default:
		return invalidf("unknown sort direction %q", c.SortDirection)
	}
	for _, f := range c.Filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a copy that shares no slices with c.
func (c ChartConfig) Clone() ChartConfig {
	if c.Filters != nil {
		fs := make([]Filter, len(c.Filters))
		copy(fs, c.Filters)
		c.Filters = fs
	}
	return c
}
