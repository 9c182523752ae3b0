package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"violens/domain/table"
)

// CorrelationMatrix holds pairwise Pearson correlations between numeric
// columns, with two-sided p-values. Cells that cannot be estimated
// (fewer than 3 complete pairs, zero variance) are NaN.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	R       [][]float64 `json:"r"`
	P       [][]float64 `json:"p"`
}

const minCompletePairs = 3

// Correlations computes the numeric-column correlation matrix over the
// filtered rows. Non-numeric columns never enter; numeric columns with
// no usable values are excluded from the matrix entirely.
func Correlations(d *table.Dataset, rows []int) CorrelationMatrix {
	var columns []string
	series := make(map[string][]float64)
	for _, name := range d.NumericColumns() {
		vals, _ := d.Numeric(name)
		picked := make([]float64, len(rows))
		usable := 0
		for k, i := range rows {
			picked[k] = vals[i]
			if !isNaN(picked[k]) {
				usable++
			}
		}
		if usable < minCompletePairs {
			continue
		}
		columns = append(columns, name)
		series[name] = picked
	}

	m := CorrelationMatrix{Columns: columns}
	m.R = make([][]float64, len(columns))
	m.P = make([][]float64, len(columns))
	for i := range columns {
		m.R[i] = make([]float64, len(columns))
		m.P[i] = make([]float64, len(columns))
		for j := range columns {
			if j < i {
				m.R[i][j] = m.R[j][i]
				m.P[i][j] = m.P[j][i]
				continue
			}
			if i == j {
				m.R[i][j] = 1
				m.P[i][j] = 0
				continue
			}
			r, p := pearson(series[columns[i]], series[columns[j]])
			m.R[i][j] = r
			m.P[i][j] = p
		}
	}
	return m
}

// pearson computes r and its two-sided p-value over pairwise-complete
// observations, via the t distribution with n-2 degrees of freedom.
func pearson(x, y []float64) (r, p float64) {
	var xs, ys []float64
	for k := range x {
		if isNaN(x[k]) || isNaN(y[k]) {
			continue
		}
		xs = append(xs, x[k])
		ys = append(ys, y[k])
	}
	n := len(xs)
	if n < minCompletePairs {
		return math.NaN(), math.NaN()
	}

	r = stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return math.NaN(), math.NaN()
	}

	if math.Abs(r) >= 1 {
		return r, 0
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	p = 2 * tdist.CDF(-math.Abs(t))
	if p > 1 {
		p = 1
	}
	return r, p
}
