package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/datalens/internal/dataset"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"matrix"` // row-major, Values[i][j]
}

// PairCorr is one off-diagonal entry of a CorrMatrix.
type PairCorr struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// Correlate builds the correlation matrix over EligibleNumeric columns. It
// returns nil when fewer than two columns qualify.
func Correlate(ds *dataset.Dataset, opt Options) *CorrMatrix {
	if ds == nil {
		return nil
	}
	cols := EligibleNumeric(ds, opt)
	if len(cols) < 2 {
		return nil
	}
	series := make([][]float64, len(cols))
	for i, c := range cols {
		series[i] = numericSeries(ds.Rows, c)
	}
	n := len(cols)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := Pearson(series[i], series[j])
			mat[i][j] = r
			mat[j][i] = r
		}
	}
	return &CorrMatrix{Columns: cols, Values: mat}
}

// numericSeries extracts the full-length column with non-numeric cells dropped.
func numericSeries(rows []dataset.Row, column string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		x := r.Get(column).FloatOrNaN()
		if math.IsNaN(x) {
			continue
		}
		out = append(out, x)
	}
	return out
}

// Pearson computes r over the common prefix of x and y. Each series is expected
// to be NaN-free already; pairing happens after independent filtering. A zero
// denominator is floored to 1, so constant series yield 0.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n == 0 {
		return 0
	}
	x, y = x[:n], y[:n]
	mx := stat.Mean(x, nil)
	my := stat.Mean(y, nil)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	den := math.Sqrt(sxx * syy)
	if den == 0 {
		den = 1
	}
	r := sxy / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return clamp(r, -1, 1)
}

// TopPairs returns up to n off-diagonal pairs ordered by |r| descending.
func (m *CorrMatrix) TopPairs(n int) []PairCorr {
	if m == nil {
		return nil
	}
	var pairs []PairCorr
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}
