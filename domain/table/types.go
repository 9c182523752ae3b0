package table

import (
	"sort"
	"time"

	"violens/domain/core"
	apperrors "violens/internal/errors"
)

// ColumnType classifies how a column's values are stored and aggregated.
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeTimestamp   ColumnType = "timestamp"
)

// Column describes one column of a loaded dataset.
type Column struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Derived bool       `json:"derived"`
}

// Schema is the ordered column inventory of a dataset. It is fixed once
// the load completes; derived columns are appended, base columns are
// never replaced.
type Schema struct {
	cols  []Column
	index map[string]int
}

// NewSchema builds an empty schema.
func NewSchema() *Schema {
	return &Schema{index: make(map[string]int)}
}

// Columns returns the columns in declaration order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.cols))
	copy(out, s.cols)
	return out
}

// Lookup finds a column by name.
func (s *Schema) Lookup(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.cols[i], true
}

// Has reports whether the schema contains a column.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.cols)
}

func (s *Schema) add(col Column) error {
	if _, exists := s.index[col.Name]; exists {
		return apperrors.Newf(apperrors.CodeLoadError, "column %q already defined", col.Name)
	}
	s.index[col.Name] = len(s.cols)
	s.cols = append(s.cols, col)
	return nil
}

// Dataset is an immutable column-oriented table of violation records.
// Categorical columns are stored as label slices, numeric columns as
// float64 slices (NaN marks a missing cell), and the single timestamp
// column combines Date and Time. All columns share one row count.
type Dataset struct {
	id     core.DatasetID
	name   string
	schema *Schema

	stamps  []time.Time
	labels  map[string][]string
	numeric map[string][]float64

	rows    int
	dropped int
}

// NewDataset creates an empty dataset shell. Columns are attached by the
// loader before the dataset is published to the session store.
func NewDataset(name string, rows int) *Dataset {
	return &Dataset{
		id:      core.DatasetID(core.NewID()),
		name:    name,
		schema:  NewSchema(),
		labels:  make(map[string][]string),
		numeric: make(map[string][]float64),
		rows:    rows,
	}
}

// ID returns the dataset instance identifier.
func (d *Dataset) ID() core.DatasetID { return d.id }

// Name returns the source file name.
func (d *Dataset) Name() string { return d.name }

// Rows returns the number of records that survived the load.
func (d *Dataset) Rows() int { return d.rows }

// Dropped returns the number of input rows rejected during the load.
func (d *Dataset) Dropped() int { return d.dropped }

// SetDropped records the count of rejected input rows.
func (d *Dataset) SetDropped(n int) { d.dropped = n }

// Schema returns the dataset's column inventory.
func (d *Dataset) Schema() *Schema { return d.schema }

// SetTimestamps attaches the combined Date+Time column.
func (d *Dataset) SetTimestamps(ts []time.Time) error {
	if len(ts) != d.rows {
		return apperrors.Newf(apperrors.CodeLoadError,
			"timestamp column has %d values, dataset has %d rows", len(ts), d.rows)
	}
	if err := d.schema.add(Column{Name: ColDate, Type: TypeTimestamp}); err != nil {
		return err
	}
	d.stamps = ts
	return nil
}

// AddLabelColumn attaches a categorical column.
func (d *Dataset) AddLabelColumn(name string, values []string, derived bool) error {
	if len(values) != d.rows {
		return apperrors.Newf(apperrors.CodeLoadError,
			"column %q has %d values, dataset has %d rows", name, len(values), d.rows)
	}
	if err := d.schema.add(Column{Name: name, Type: TypeCategorical, Derived: derived}); err != nil {
		return err
	}
	d.labels[name] = values
	return nil
}

// AddNumericColumn attaches a numeric column. NaN marks missing cells.
func (d *Dataset) AddNumericColumn(name string, values []float64, derived bool) error {
	if len(values) != d.rows {
		return apperrors.Newf(apperrors.CodeLoadError,
			"column %q has %d values, dataset has %d rows", name, len(values), d.rows)
	}
	if err := d.schema.add(Column{Name: name, Type: TypeNumeric, Derived: derived}); err != nil {
		return err
	}
	d.numeric[name] = values
	return nil
}

// Timestamps returns the combined Date+Time column.
func (d *Dataset) Timestamps() []time.Time { return d.stamps }

// Label returns a categorical column by name.
func (d *Dataset) Label(name string) ([]string, bool) {
	vals, ok := d.labels[name]
	return vals, ok
}

// Numeric returns a numeric column by name.
func (d *Dataset) Numeric(name string) ([]float64, bool) {
	vals, ok := d.numeric[name]
	return vals, ok
}

// TimeRange returns the earliest and latest timestamps in the dataset.
func (d *Dataset) TimeRange() (time.Time, time.Time) {
	if len(d.stamps) == 0 {
		return time.Time{}, time.Time{}
	}
	min, max := d.stamps[0], d.stamps[0]
	for _, ts := range d.stamps[1:] {
		if ts.Before(min) {
			min = ts
		}
		if ts.After(max) {
			max = ts
		}
	}
	return min, max
}

// DistinctLabels returns the sorted distinct values of a categorical column.
func (d *Dataset) DistinctLabels(name string) []string {
	vals, ok := d.labels[name]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, 16)
	var out []string
	for _, v := range vals {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// NumericColumns returns the names of all numeric columns in schema order.
func (d *Dataset) NumericColumns() []string {
	var out []string
	for _, col := range d.schema.cols {
		if col.Type == TypeNumeric {
			out = append(out, col.Name)
		}
	}
	return out
}
