package table

import (
	"time"
)

// FilterSelection is the session's current filter state. A nil slice
// means the dimension is unconstrained; a non-nil empty slice is an
// explicit empty selection and matches no rows. Zero time bounds are
// unbounded on that side.
type FilterSelection struct {
	DateFrom time.Time `json:"date_from"`
	DateTo   time.Time `json:"date_to"`

	States         []string `json:"states"`
	VehicleTypes   []string `json:"vehicle_types"`
	ViolationTypes []string `json:"violation_types"`
}

// IsZero reports whether no constraint is active.
func (f FilterSelection) IsZero() bool {
	return f.DateFrom.IsZero() && f.DateTo.IsZero() &&
		f.States == nil && f.VehicleTypes == nil && f.ViolationTypes == nil
}

// Clamp pulls out-of-range date bounds back inside the dataset's own
// range. Invalid bounds never surface as errors to the UI.
func (f *FilterSelection) Clamp(min, max time.Time) {
	if !f.DateFrom.IsZero() {
		if f.DateFrom.Before(min) {
			f.DateFrom = min
		}
		if f.DateFrom.After(max) {
			f.DateFrom = max
		}
	}
	if !f.DateTo.IsZero() {
		if f.DateTo.After(max) {
			f.DateTo = max
		}
		if f.DateTo.Before(min) {
			f.DateTo = min
		}
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateTo.Before(f.DateFrom) {
		f.DateFrom, f.DateTo = f.DateTo, f.DateFrom
	}
}

// Clone returns a deep copy so a snapshot cannot alias session state.
func (f FilterSelection) Clone() FilterSelection {
	out := f
	if f.States != nil {
		out.States = append([]string(nil), f.States...)
	}
	if f.VehicleTypes != nil {
		out.VehicleTypes = append([]string(nil), f.VehicleTypes...)
	}
	if f.ViolationTypes != nil {
		out.ViolationTypes = append([]string(nil), f.ViolationTypes...)
	}
	return out
}

// Apply evaluates the selection against a dataset and returns the
// indices of matching rows in record order.
func (f FilterSelection) Apply(d *Dataset) []int {
	stamps := d.Timestamps()
	states, _ := d.Label(ColLocation)
	vehicles, _ := d.Label(ColVehicleType)
	violations, _ := d.Label(ColViolationType)

	stateSet := toSet(f.States)
	vehicleSet := toSet(f.VehicleTypes)
	violationSet := toSet(f.ViolationTypes)

	matched := make([]int, 0, d.Rows())
	for i := 0; i < d.Rows(); i++ {
		if !f.DateFrom.IsZero() && stamps[i].Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && stamps[i].After(endOfDay(f.DateTo)) {
			continue
		}
		if stateSet != nil && !stateSet[states[i]] {
			continue
		}
		if vehicleSet != nil && !vehicleSet[vehicles[i]] {
			continue
		}
		if violationSet != nil && !violationSet[violations[i]] {
			continue
		}
		matched = append(matched, i)
	}
	return matched
}

// toSet keeps the nil/non-nil distinction: a nil slice stays nil (no
// constraint), an empty slice becomes an empty set (matches nothing).
func toSet(values []string) map[string]bool {
	if values == nil {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// endOfDay widens an inclusive upper date bound to the last instant of
// that calendar day so same-day records are not cut off.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
