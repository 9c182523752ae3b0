package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/montanaflynn/stats"

	"violens/domain/table"
)

func isNaN(v float64) bool { return math.IsNaN(v) }

// Summary holds the KPI metrics shown on the dashboard header.
type Summary struct {
	TotalViolations int       `json:"total_violations"`
	TotalFine       float64   `json:"total_fine"`
	MeanFine        float64   `json:"mean_fine"`
	MedianFine      float64   `json:"median_fine"`
	StateCount      int       `json:"state_count"`
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
}

// Summarize computes dashboard KPIs over the filtered rows.
func Summarize(d *table.Dataset, rows []int) Summary {
	s := Summary{TotalViolations: len(rows)}
	if len(rows) == 0 {
		return s
	}

	fines, _ := d.Numeric(table.ColFineAmount)
	states, _ := d.Label(table.ColLocation)
	stamps := d.Timestamps()

	values := make(stats.Float64Data, 0, len(rows))
	seen := make(map[string]struct{})
	s.From, s.To = stamps[rows[0]], stamps[rows[0]]
	for _, i := range rows {
		if !isNaN(fines[i]) {
			values = append(values, fines[i])
			s.TotalFine += fines[i]
		}
		seen[states[i]] = struct{}{}
		if stamps[i].Before(s.From) {
			s.From = stamps[i]
		}
		if stamps[i].After(s.To) {
			s.To = stamps[i]
		}
	}
	s.StateCount = len(seen)

	if len(values) > 0 {
		s.MeanFine, _ = stats.Mean(values)
		s.MedianFine, _ = stats.Median(values)
	}
	return s
}

// Histogram is an equal-width binning of a numeric column.
type Histogram struct {
	Labels []string  `json:"labels"`
	Counts []int     `json:"counts"`
	Edges  []float64 `json:"edges"`
}

// NumericHistogram bins a numeric column over the filtered rows. NaN
// cells are skipped; a degenerate range collapses to one bin.
func NumericHistogram(d *table.Dataset, rows []int, column string, bins int) Histogram {
	vals, ok := d.Numeric(column)
	if !ok || bins <= 0 {
		return Histogram{}
	}

	data := make(stats.Float64Data, 0, len(rows))
	for _, i := range rows {
		if !isNaN(vals[i]) {
			data = append(data, vals[i])
		}
	}
	if len(data) == 0 {
		return Histogram{}
	}

	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	if min == max {
		return Histogram{
			Labels: []string{formatRange(min, max)},
			Counts: []int{len(data)},
			Edges:  []float64{min, max},
		}
	}

	width := (max - min) / float64(bins)
	h := Histogram{
		Labels: make([]string, bins),
		Counts: make([]int, bins),
		Edges:  make([]float64, bins+1),
	}
	for b := 0; b <= bins; b++ {
		h.Edges[b] = min + width*float64(b)
	}
	for b := 0; b < bins; b++ {
		h.Labels[b] = formatRange(h.Edges[b], h.Edges[b+1])
	}
	for _, v := range data {
		b := int((v - min) / width)
		if b >= bins {
			b = bins - 1
		}
		h.Counts[b]++
	}
	return h
}

func formatRange(lo, hi float64) string {
	return trimFloat(lo) + "-" + trimFloat(hi)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', -1, 64)
}
