package session

import (
	"sync"
	"time"

	"violens/domain/table"
	"violens/internal"
)

// Store owns the single session's dataset and filter selection. Views
// never touch it directly; each render takes an immutable RenderContext
// snapshot instead, so there is no ambient global state.
type Store struct {
	mu sync.RWMutex

	dataset  *table.Dataset
	filters  table.FilterSelection
	loadErr  error
	loadedAt time.Time

	logger *internal.Logger
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{logger: internal.NewLogger("Session")}
}

// ReplaceDataset swaps in a freshly loaded dataset and resets the
// filter selection, clearing any previous load failure.
func (s *Store) ReplaceDataset(ds *table.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
	s.filters = table.FilterSelection{}
	s.loadErr = nil
	s.loadedAt = time.Now()
	s.logger.Info("dataset replaced: %s (%d rows, id=%s)", ds.Name(), ds.Rows(), ds.ID())
}

// SetLoadError records a failed load. The previous dataset, if any,
// stays active; the failure is surfaced alongside it.
func (s *Store) SetLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
	s.logger.Error("load failed: %v", err)
}

// Dataset returns the active dataset, or nil before the first
// successful load.
func (s *Store) Dataset() *table.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Filters returns a copy of the current filter selection.
func (s *Store) Filters() table.FilterSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Clone()
}

// SetDateRange updates the date bounds, clamping them to the dataset's
// own range. A zero bound clears that side.
func (s *Store) SetDateRange(from, to time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.DateFrom = from
	s.filters.DateTo = to
	if s.dataset != nil {
		min, max := s.dataset.TimeRange()
		s.filters.Clamp(min, max)
	}
}

// SetStates replaces the state selection. nil clears the constraint.
func (s *Store) SetStates(states []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.States = cloneSlice(states)
}

// SetVehicleTypes replaces the vehicle-type selection.
func (s *Store) SetVehicleTypes(types []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.VehicleTypes = cloneSlice(types)
}

// SetViolationTypes replaces the violation-type selection.
func (s *Store) SetViolationTypes(types []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.ViolationTypes = cloneSlice(types)
}

// ResetFilters clears every constraint.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = table.FilterSelection{}
}

func cloneSlice(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// RenderContext is the immutable per-render snapshot handed to views:
// the dataset, the filter selection, and the matching row indices.
type RenderContext struct {
	Dataset  *table.Dataset
	Filters  table.FilterSelection
	Rows     []int
	LoadErr  error
	LoadedAt time.Time
}

// HasData reports whether a dataset is loaded.
func (rc *RenderContext) HasData() bool {
	return rc.Dataset != nil
}

// Empty reports whether the filter selection matched no rows.
func (rc *RenderContext) Empty() bool {
	return rc.Dataset == nil || len(rc.Rows) == 0
}

// Snapshot evaluates the current filters against the current dataset
// and returns the render context for one request.
func (s *Store) Snapshot() *RenderContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rc := &RenderContext{
		Filters:  s.filters.Clone(),
		LoadErr:  s.loadErr,
		LoadedAt: s.loadedAt,
	}
	if s.dataset != nil {
		rc.Dataset = s.dataset
		rc.Rows = s.filters.Apply(s.dataset)
	}
	return rc
}
