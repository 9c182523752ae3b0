package tabfile

import (
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"violens/domain/table"
	"violens/internal"
	apperrors "violens/internal/errors"
)

// Loader turns a raw CSV/XLSX file into a typed Dataset: header
// validation, per-row coercion with the drop policy, derived columns.
type Loader struct {
	logger *internal.Logger
}

// NewLoader creates a dataset loader.
func NewLoader() *Loader {
	return &Loader{logger: internal.NewLogger("Loader")}
}

// Load reads and coerces a file from disk.
func (l *Loader) Load(path string) (*table.Dataset, error) {
	raw, err := NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}
	return l.build(raw, filepath.Base(path))
}

// LoadReader reads and coerces an uploaded stream.
func (l *Loader) LoadReader(r io.Reader, name string) (*table.Dataset, error) {
	raw, err := ReadFrom(r, name)
	if err != nil {
		return nil, err
	}
	return l.build(raw, name)
}

// categorical required columns checked cell by cell; an empty cell drops the row
var requiredLabels = []string{
	table.ColViolationID,
	table.ColLocation,
	table.ColViolationType,
	table.ColVehicleType,
	table.ColDriverGender,
	table.ColPaymentStatus,
}

var optionalLabels = []string{
	table.ColLicenseType,
	table.ColWeatherCondition,
	table.ColRoadCondition,
	table.ColOfficerID,
}

var optionalNumerics = []string{
	table.ColSpeedLimit,
	table.ColRecordedSpeed,
	table.ColPenaltyPoints,
	table.ColPreviousViolations,
}

func (l *Loader) build(raw *RawTable, name string) (*table.Dataset, error) {
	if err := validateHeaders(raw.Headers); err != nil {
		return nil, err
	}

	has := make(map[string]bool, len(raw.Headers))
	for _, h := range raw.Headers {
		has[h] = true
	}

	acc := newAccumulator(has, len(raw.Rows))

	dropped := 0
	for _, row := range raw.Rows {
		if !acc.push(row) {
			dropped++
		}
	}

	ds, err := acc.dataset(name)
	if err != nil {
		return nil, err
	}
	ds.SetDropped(dropped)

	if dropped > 0 {
		l.logger.Warn("dropped %d of %d rows from %s", dropped, len(raw.Rows), name)
	}
	l.logger.Info("loaded %s: %d rows, %d columns", name, ds.Rows(), ds.Schema().Len())
	return ds, nil
}

func validateHeaders(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, required := range table.RequiredColumns {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return apperrors.LoadErrorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// accumulator gathers coerced column values row by row. A row either
// passes completely or is rejected; no partial appends.
type accumulator struct {
	has map[string]bool

	stamps []time.Time
	labels map[string][]string
	nums   map[string][]float64
}

func newAccumulator(has map[string]bool, capacity int) *accumulator {
	acc := &accumulator{
		has:    has,
		stamps: make([]time.Time, 0, capacity),
		labels: make(map[string][]string),
		nums:   make(map[string][]float64),
	}
	for _, col := range requiredLabels {
		acc.labels[col] = make([]string, 0, capacity)
	}
	for _, col := range optionalLabels {
		if has[col] {
			acc.labels[col] = make([]string, 0, capacity)
		}
	}
	acc.nums[table.ColDriverAge] = make([]float64, 0, capacity)
	acc.nums[table.ColFineAmount] = make([]float64, 0, capacity)
	for _, col := range optionalNumerics {
		if has[col] {
			acc.nums[col] = make([]float64, 0, capacity)
		}
	}
	for _, col := range []string{table.ColDayOfWeek, table.ColHourBucket, table.ColAgeBucket, table.ColMonth} {
		acc.labels[col] = make([]string, 0, capacity)
	}
	return acc
}

// push coerces one raw row. Returns false when the row is dropped.
func (a *accumulator) push(row map[string]string) bool {
	date, ok := parseDate(row[table.ColDate])
	if !ok {
		return false
	}
	hour, minute, ok := parseTimeOfDay(row[table.ColTime])
	if !ok {
		return false
	}

	for _, col := range requiredLabels {
		if row[col] == "" {
			return false
		}
	}

	fine, ok := parseNumber(row[table.ColFineAmount])
	if !ok || fine < 0 {
		return false
	}

	age, ageOK := parseNumber(row[table.ColDriverAge])
	if !ageOK {
		age = math.NaN()
	}

	stamp := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	a.stamps = append(a.stamps, stamp)

	for _, col := range requiredLabels {
		a.labels[col] = append(a.labels[col], row[col])
	}
	for _, col := range optionalLabels {
		if !a.has[col] {
			continue
		}
		value := row[col]
		if value == "" {
			value = table.Unknown
		}
		a.labels[col] = append(a.labels[col], value)
	}

	a.nums[table.ColDriverAge] = append(a.nums[table.ColDriverAge], age)
	a.nums[table.ColFineAmount] = append(a.nums[table.ColFineAmount], fine)
	for _, col := range optionalNumerics {
		if !a.has[col] {
			continue
		}
		v, ok := parseNumber(row[col])
		if !ok {
			v = math.NaN()
		}
		a.nums[col] = append(a.nums[col], v)
	}

	a.labels[table.ColDayOfWeek] = append(a.labels[table.ColDayOfWeek], stamp.Weekday().String())
	a.labels[table.ColHourBucket] = append(a.labels[table.ColHourBucket], hourBucket(hour))
	a.labels[table.ColAgeBucket] = append(a.labels[table.ColAgeBucket], ageBucket(age, ageOK))
	a.labels[table.ColMonth] = append(a.labels[table.ColMonth], monthKey(stamp))
	return true
}

// dataset assembles the final Dataset. Base columns first, derived
// columns appended after, matching the schema contract.
func (a *accumulator) dataset(name string) (*table.Dataset, error) {
	ds := table.NewDataset(name, len(a.stamps))

	if err := ds.SetTimestamps(a.stamps); err != nil {
		return nil, err
	}
	for _, col := range requiredLabels {
		if err := ds.AddLabelColumn(col, a.labels[col], false); err != nil {
			return nil, err
		}
	}
	if err := ds.AddNumericColumn(table.ColDriverAge, a.nums[table.ColDriverAge], false); err != nil {
		return nil, err
	}
	if err := ds.AddNumericColumn(table.ColFineAmount, a.nums[table.ColFineAmount], false); err != nil {
		return nil, err
	}
	for _, col := range optionalLabels {
		if !a.has[col] {
			continue
		}
		if err := ds.AddLabelColumn(col, a.labels[col], false); err != nil {
			return nil, err
		}
	}
	for _, col := range optionalNumerics {
		if !a.has[col] {
			continue
		}
		if err := ds.AddNumericColumn(col, a.nums[col], false); err != nil {
			return nil, err
		}
	}

	for _, col := range []string{table.ColDayOfWeek, table.ColHourBucket, table.ColAgeBucket, table.ColMonth} {
		if err := ds.AddLabelColumn(col, a.labels[col], true); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
