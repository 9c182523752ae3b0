package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"violens/domain/table"
	apperrors "violens/internal/errors"
)

func storeDataset(t *testing.T) *table.Dataset {
	t.Helper()

	stamps := []time.Time{
		time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 25, 18, 0, 0, 0, time.UTC),
	}
	ds := table.NewDataset("session.csv", 3)
	require.NoError(t, ds.SetTimestamps(stamps))
	require.NoError(t, ds.AddLabelColumn(table.ColLocation, []string{"Delhi", "Goa", "Delhi"}, false))
	require.NoError(t, ds.AddLabelColumn(table.ColVehicleType, []string{"Car", "Bike", "Car"}, false))
	require.NoError(t, ds.AddLabelColumn(table.ColViolationType, []string{"Speeding", "Parking", "Speeding"}, false))
	require.NoError(t, ds.AddNumericColumn(table.ColFineAmount, []float64{100, 200, 300}, false))
	return ds
}

func TestSnapshot_BeforeFirstLoad(t *testing.T) {
	store := NewStore()
	rc := store.Snapshot()

	assert.False(t, rc.HasData())
	assert.True(t, rc.Empty())
	assert.Nil(t, rc.LoadErr)
}

func TestReplaceDataset_ResetsFiltersAndError(t *testing.T) {
	store := NewStore()
	store.SetLoadError(apperrors.LoadError("bad file"))
	store.SetStates([]string{"Delhi"})

	store.ReplaceDataset(storeDataset(t))

	rc := store.Snapshot()
	require.True(t, rc.HasData())
	assert.Nil(t, rc.LoadErr)
	assert.True(t, rc.Filters.IsZero(), "filters must reset on dataset replace")
	assert.Len(t, rc.Rows, 3)
}

func TestSetLoadError_KeepsActiveDataset(t *testing.T) {
	store := NewStore()
	store.ReplaceDataset(storeDataset(t))
	store.SetLoadError(apperrors.LoadError("upload failed"))

	rc := store.Snapshot()
	assert.True(t, rc.HasData(), "a failed reload must not evict the active dataset")
	require.Error(t, rc.LoadErr)
	assert.True(t, apperrors.IsCode(rc.LoadErr, apperrors.CodeLoadError))
}

func TestSetDateRange_ClampsToDatasetRange(t *testing.T) {
	store := NewStore()
	store.ReplaceDataset(storeDataset(t))

	store.SetDateRange(
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	)

	filters := store.Filters()
	min, max := storeDataset(t).TimeRange()
	assert.Equal(t, min, filters.DateFrom)
	assert.Equal(t, max, filters.DateTo)

	rc := store.Snapshot()
	assert.Len(t, rc.Rows, 3, "clamped full range keeps every row")
}

func TestSetStates_FiltersSnapshot(t *testing.T) {
	store := NewStore()
	store.ReplaceDataset(storeDataset(t))
	store.SetStates([]string{"Delhi"})

	rc := store.Snapshot()
	assert.Len(t, rc.Rows, 2)

	store.ResetFilters()
	rc = store.Snapshot()
	assert.Len(t, rc.Rows, 3)
}

func TestSnapshot_FilterIsolation(t *testing.T) {
	store := NewStore()
	store.ReplaceDataset(storeDataset(t))
	store.SetStates([]string{"Delhi"})

	rc := store.Snapshot()
	rc.Filters.States[0] = "Goa"

	assert.Equal(t, []string{"Delhi"}, store.Filters().States,
		"mutating a snapshot must not leak into the store")
}

func TestSetStates_NilClearsConstraint(t *testing.T) {
	store := NewStore()
	store.ReplaceDataset(storeDataset(t))
	store.SetStates([]string{"Delhi"})
	store.SetStates(nil)

	rc := store.Snapshot()
	assert.Len(t, rc.Rows, 3)
}
