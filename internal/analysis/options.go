package analysis

// Options controls sampling and output bounds of the analytics engine.
type Options struct {
	// SampleRows is the prefix of rows used for type inference.
	SampleRows int
	// QuickSampleRows is the prefix used to pick the quick-chart columns.
	QuickSampleRows int
	// NumericMinMatches and NumericRatio define the numeric threshold:
	// matches >= max(NumericMinMatches, NumericRatio*sampleSize).
	NumericMinMatches int
	NumericRatio      float64
	// Distinct non-empty sampled values a categorical quick-chart column must have.
	CategoricalMinDistinct int
	CategoricalMaxDistinct int
	// HistogramBins is the default bin count.
	HistogramBins int
	// TopCategories truncates category frequency tables.
	TopCategories int
	// HistogramColumn and CategoryColumn override the quick picks in Profile.
	HistogramColumn string
	CategoryColumn  string
	// Correlations toggles the correlation matrix in Profile.
	Correlations bool
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		SampleRows:             50,
		QuickSampleRows:        20,
		NumericMinMatches:      5,
		NumericRatio:           0.6,
		CategoricalMinDistinct: 2,
		CategoricalMaxDistinct: 20,
		HistogramBins:          12,
		TopCategories:          15,
		Correlations:           true,
	}
}

// normalized fills zero fields with defaults so callers may pass partial Options.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.SampleRows <= 0 {
		o.SampleRows = d.SampleRows
	}
	if o.QuickSampleRows <= 0 {
		o.QuickSampleRows = d.QuickSampleRows
	}
	if o.NumericMinMatches <= 0 {
		o.NumericMinMatches = d.NumericMinMatches
	}
	if o.NumericRatio <= 0 {
		o.NumericRatio = d.NumericRatio
	}
	if o.CategoricalMinDistinct <= 0 {
		o.CategoricalMinDistinct = d.CategoricalMinDistinct
	}
	if o.CategoricalMaxDistinct <= 0 {
		o.CategoricalMaxDistinct = d.CategoricalMaxDistinct
	}
	if o.HistogramBins <= 0 {
		o.HistogramBins = d.HistogramBins
	}
	if o.TopCategories <= 0 {
		o.TopCategories = d.TopCategories
	}
	return o
}
