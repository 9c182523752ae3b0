package ui

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"violens/adapters/geo"
	"violens/adapters/tabfile"
	"violens/domain/table"
	"violens/internal/config"
	"violens/internal/session"
)

const testGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"ST_NM": "Delhi"}, "geometry": {"type": "Polygon", "coordinates": []}},
    {"type": "Feature", "properties": {"ST_NM": "Karnataka"}, "geometry": {"type": "Polygon", "coordinates": []}}
  ]
}`

func testServer(t *testing.T, withData bool) (*Server, *session.Store) {
	t.Helper()

	cfg := &config.Config{
		Port:        "0",
		GinMode:     "test",
		DataFile:    "unused.csv",
		MaxUploadMB: 8,
	}
	store := session.NewStore()
	if withData {
		store.ReplaceDataset(serverDataset(t))
	}

	boundaries, err := geo.ParseBoundaries([]byte(testGeoJSON), "states")
	require.NoError(t, err)

	srv, err := NewServer(cfg, store, tabfile.NewLoader(), boundaries, nil)
	require.NoError(t, err)
	return srv, store
}

func serverDataset(t *testing.T) *table.Dataset {
	t.Helper()

	stamps := []time.Time{
		time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 10, 14, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 22, 0, 0, 0, time.UTC),
	}
	ds := table.NewDataset("server.csv", 3)
	require.NoError(t, ds.SetTimestamps(stamps))
	labels := map[string][]string{
		table.ColViolationID:   {"V1", "V2", "V3"},
		table.ColLocation:      {"Delhi", "Karnataka", "Atlantis"},
		table.ColViolationType: {"Speeding", "Parking", "Speeding"},
		table.ColVehicleType:   {"Car", "Truck", "Bike"},
		table.ColDriverGender:  {"Male", "Female", "Male"},
		table.ColPaymentStatus: {"Paid", "Unpaid", "Pending"},
		table.ColDayOfWeek:     {"Friday", "Saturday", "Friday"},
		table.ColHourBucket:    {"Morning", "Afternoon", "Evening"},
		table.ColAgeBucket:     {"26-35", "36-50", "18-25"},
		table.ColMonth:         {"2024-01", "2024-02", "2024-03"},
	}
	for name, vals := range labels {
		derived := table.BucketOrder(name) != nil || name == table.ColMonth
		require.NoError(t, ds.AddLabelColumn(name, vals, derived))
	}
	require.NoError(t, ds.AddNumericColumn(table.ColDriverAge, []float64{34, 45, 22}, false))
	require.NoError(t, ds.AddNumericColumn(table.ColFineAmount, []float64{500, 1000, 250}, false))
	return ds
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestPageRegistry_SlugsAreUnique(t *testing.T) {
	srv, _ := testServer(t, false)

	seen := make(map[string]bool)
	for _, p := range srv.pages {
		assert.False(t, seen[p.Slug], "duplicate slug %q", p.Slug)
		seen[p.Slug] = true
		assert.NotNil(t, p.Render, "page %q has no handler", p.Title)
	}
	assert.Len(t, srv.pages, 10)
}

func TestAllPagesRenderWithData(t *testing.T) {
	srv, _ := testServer(t, true)

	for _, p := range srv.pages {
		w := get(t, srv, "/"+p.Slug)
		assert.Equal(t, http.StatusOK, w.Code, "page %q", p.Title)
		assert.Contains(t, w.Body.String(), "</html>", "page %q should render completely", p.Title)
	}
}

func TestAllPagesRenderWithoutData(t *testing.T) {
	srv, _ := testServer(t, false)

	for _, p := range srv.pages {
		w := get(t, srv, "/"+p.Slug)
		assert.Equal(t, http.StatusOK, w.Code, "page %q must not fail without a dataset", p.Title)
	}
}

func TestEmptyFilterSelectionShowsEmptyState(t *testing.T) {
	srv, store := testServer(t, true)
	store.SetStates([]string{})

	w := get(t, srv, "/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No records match",
		"empty result must render the empty-state message, not an empty chart")
}

func TestSetFilters_AppliesAndRedirects(t *testing.T) {
	srv, store := testServer(t, true)

	form := url.Values{}
	form.Set("date_from", "2024-02-01")
	form.Set("date_to", "2024-12-31")
	form.Add("states", "Delhi")
	form.Add("states", "Karnataka")
	form.Set("return", "/time-trend")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/filters", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/time-trend", w.Header().Get("Location"))

	rc := store.Snapshot()
	assert.Len(t, rc.Rows, 1, "only the Karnataka row falls inside the range")
}

func TestResetFilters(t *testing.T) {
	srv, store := testServer(t, true)
	store.SetStates([]string{"Delhi"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/filters/reset", nil)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, store.Filters().IsZero())
}

func TestReportDownload_ServesWorkbook(t *testing.T) {
	srv, _ := testServer(t, true)

	w := get(t, srv, "/report/download")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestReportDownload_RedirectsWithoutData(t *testing.T) {
	srv, _ := testServer(t, false)

	w := get(t, srv, "/report/download")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestMapPage_ShowsUnmatchedBucket(t *testing.T) {
	srv, _ := testServer(t, true)

	// Atlantis matches no boundary polygon
	w := get(t, srv, "/map")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Unmatched")
}
