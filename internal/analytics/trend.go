package analytics

import (
	"sort"

	"violens/domain/table"
)

// TrendPoint is one month of the time trend.
type TrendPoint struct {
	Month     string  `json:"month"`
	Count     int     `json:"count"`
	FineTotal float64 `json:"fine_total"`
}

// TrendResult is the monthly trend in chronological order.
type TrendResult struct {
	Points []TrendPoint `json:"points"`
}

// Months returns the month keys in chronological order.
func (r TrendResult) Months() []string {
	out := make([]string, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Month
	}
	return out
}

// Counts returns per-month row counts in chronological order.
func (r TrendResult) Counts() []int {
	out := make([]int, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Count
	}
	return out
}

// FineTotals returns per-month fine sums in chronological order.
func (r TrendResult) FineTotals() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.FineTotal
	}
	return out
}

// MonthlyTrend buckets the filtered rows by calendar month. Rows are
// ordered by timestamp first, with Violation_ID breaking ties, so the
// accumulation order is deterministic across renders.
func MonthlyTrend(d *table.Dataset, rows []int) TrendResult {
	stamps := d.Timestamps()
	ids, _ := d.Label(table.ColViolationID)
	months, _ := d.Label(table.ColMonth)
	fines, _ := d.Numeric(table.ColFineAmount)

	ordered := append([]int(nil), rows...)
	sort.SliceStable(ordered, func(a, b int) bool {
		i, j := ordered[a], ordered[b]
		if !stamps[i].Equal(stamps[j]) {
			return stamps[i].Before(stamps[j])
		}
		return ids[i] < ids[j]
	})

	var result TrendResult
	index := make(map[string]int)
	for _, i := range ordered {
		month := months[i]
		at, ok := index[month]
		if !ok {
			at = len(result.Points)
			index[month] = at
			result.Points = append(result.Points, TrendPoint{Month: month})
		}
		result.Points[at].Count++
		if !isNaN(fines[i]) {
			result.Points[at].FineTotal += fines[i]
		}
	}
	return result
}

// SpeedingShare returns the fraction of filtered rows whose recorded
// speed exceeds the posted limit. ok is false when either column is
// absent or no row has both values.
func SpeedingShare(d *table.Dataset, rows []int) (share float64, ok bool) {
	limits, hasLimit := d.Numeric(table.ColSpeedLimit)
	speeds, hasSpeed := d.Numeric(table.ColRecordedSpeed)
	if !hasLimit || !hasSpeed {
		return 0, false
	}
	total, over := 0, 0
	for _, i := range rows {
		if isNaN(limits[i]) || isNaN(speeds[i]) {
			continue
		}
		total++
		if speeds[i] > limits[i] {
			over++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(over) / float64(total), true
}

// RepeatOffenderShare returns the fraction of filtered rows with at
// least one previous violation on record.
func RepeatOffenderShare(d *table.Dataset, rows []int) (share float64, ok bool) {
	previous, has := d.Numeric(table.ColPreviousViolations)
	if !has {
		return 0, false
	}
	total, repeat := 0, 0
	for _, i := range rows {
		if isNaN(previous[i]) {
			continue
		}
		total++
		if previous[i] > 0 {
			repeat++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(repeat) / float64(total), true
}
