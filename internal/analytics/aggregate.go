package analytics

import (
	"sort"

	"violens/domain/table"
	apperrors "violens/internal/errors"
)

// Group is one aggregation bucket: its label, row count, and the sum
// and mean of the metric column when one was requested.
type Group struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Mean  float64 `json:"mean"`
}

// AggregateResult is an ordered set of groups. Derived bucket columns
// keep their canonical order; everything else sorts by count descending
// with label as the tie-break.
type AggregateResult struct {
	GroupBy string  `json:"group_by"`
	Metric  string  `json:"metric"`
	Groups  []Group `json:"groups"`
}

// Labels returns group labels in result order.
func (r AggregateResult) Labels() []string {
	out := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		out[i] = g.Label
	}
	return out
}

// Counts returns group row counts in result order.
func (r AggregateResult) Counts() []int {
	out := make([]int, len(r.Groups))
	for i, g := range r.Groups {
		out[i] = g.Count
	}
	return out
}

// Sums returns metric sums in result order.
func (r AggregateResult) Sums() []float64 {
	out := make([]float64, len(r.Groups))
	for i, g := range r.Groups {
		out[i] = g.Sum
	}
	return out
}

// Means returns metric means in result order.
func (r AggregateResult) Means() []float64 {
	out := make([]float64, len(r.Groups))
	for i, g := range r.Groups {
		out[i] = g.Mean
	}
	return out
}

// TotalCount returns the number of rows across all groups.
func (r AggregateResult) TotalCount() int {
	total := 0
	for _, g := range r.Groups {
		total += g.Count
	}
	return total
}

// TopN truncates to the n largest groups by count, preserving order
// among the survivors.
func (r AggregateResult) TopN(n int) AggregateResult {
	if n <= 0 || n >= len(r.Groups) {
		return r
	}
	ranked := append([]Group(nil), r.Groups...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	keep := make(map[string]bool, n)
	for _, g := range ranked[:n] {
		keep[g.Label] = true
	}
	out := AggregateResult{GroupBy: r.GroupBy, Metric: r.Metric}
	for _, g := range r.Groups {
		if keep[g.Label] {
			out.Groups = append(out.Groups, g)
		}
	}
	return out
}

// GroupBy aggregates the given rows by a categorical column. When
// metric names a numeric column, each group also carries the metric's
// sum and mean over the group's rows (NaN cells are skipped).
func GroupBy(d *table.Dataset, rows []int, by, metric string) (AggregateResult, error) {
	labels, ok := d.Label(by)
	if !ok {
		return AggregateResult{}, apperrors.Newf(apperrors.CodeInternalError,
			"cannot group by %q: not a categorical column", by)
	}

	var metricVals []float64
	if metric != "" {
		metricVals, ok = d.Numeric(metric)
		if !ok {
			return AggregateResult{}, apperrors.Newf(apperrors.CodeInternalError,
				"cannot aggregate %q: not a numeric column", metric)
		}
	}

	buckets := make(map[string]*bucket)
	var order []string
	for _, i := range rows {
		label := labels[i]
		b, exists := buckets[label]
		if !exists {
			b = &bucket{}
			buckets[label] = b
			order = append(order, label)
		}
		b.count++
		if metricVals != nil && !isNaN(metricVals[i]) {
			b.sum += metricVals[i]
			b.n++
		}
	}

	result := AggregateResult{GroupBy: by, Metric: metric}
	for _, label := range orderLabels(by, order, buckets) {
		b := buckets[label]
		g := Group{Label: label, Count: b.count, Sum: b.sum}
		if b.n > 0 {
			g.Mean = b.sum / float64(b.n)
		}
		result.Groups = append(result.Groups, g)
	}
	return result, nil
}

// orderLabels applies the canonical bucket order when the column has
// one, otherwise count descending with label ascending as tie-break.
func orderLabels(by string, observed []string, buckets map[string]*bucket) []string {
	if canonical := table.BucketOrder(by); canonical != nil {
		var out []string
		seen := make(map[string]bool, len(canonical))
		for _, label := range canonical {
			if _, ok := buckets[label]; ok {
				out = append(out, label)
				seen[label] = true
			}
		}
		// off-order values, if any, follow sorted
		var extra []string
		for _, label := range observed {
			if !seen[label] {
				extra = append(extra, label)
			}
		}
		sort.Strings(extra)
		return append(out, extra...)
	}

	out := append([]string(nil), observed...)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := buckets[out[i]].count, buckets[out[j]].count
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	return out
}

type bucket struct {
	count int
	sum   float64
	n     int
}

// PivotResult is a two-way count table.
type PivotResult struct {
	RowBy     string   `json:"row_by"`
	ColBy     string   `json:"col_by"`
	RowLabels []string `json:"row_labels"`
	ColLabels []string `json:"col_labels"`
	Cells     [][]int  `json:"cells"`
}

// Pivot cross-tabulates two categorical columns over the given rows.
func Pivot(d *table.Dataset, rows []int, rowBy, colBy string) (PivotResult, error) {
	rowVals, ok := d.Label(rowBy)
	if !ok {
		return PivotResult{}, apperrors.Newf(apperrors.CodeInternalError,
			"cannot pivot on %q: not a categorical column", rowBy)
	}
	colVals, ok := d.Label(colBy)
	if !ok {
		return PivotResult{}, apperrors.Newf(apperrors.CodeInternalError,
			"cannot pivot on %q: not a categorical column", colBy)
	}

	counts := make(map[string]map[string]int)
	var rowOrder, colOrder []string
	rowSeen := make(map[string]bool)
	colSeen := make(map[string]bool)
	for _, i := range rows {
		r, c := rowVals[i], colVals[i]
		if !rowSeen[r] {
			rowSeen[r] = true
			rowOrder = append(rowOrder, r)
		}
		if !colSeen[c] {
			colSeen[c] = true
			colOrder = append(colOrder, c)
		}
		if counts[r] == nil {
			counts[r] = make(map[string]int)
		}
		counts[r][c]++
	}
	sort.Strings(rowOrder)
	sort.Strings(colOrder)

	cells := make([][]int, len(rowOrder))
	for i, r := range rowOrder {
		cells[i] = make([]int, len(colOrder))
		for j, c := range colOrder {
			cells[i][j] = counts[r][c]
		}
	}
	return PivotResult{
		RowBy: rowBy, ColBy: colBy,
		RowLabels: rowOrder, ColLabels: colOrder,
		Cells: cells,
	}, nil
}
