package analytics

import (
	"math"
	"testing"
	"time"

	"violens/domain/table"
)

func correlationDataset(t *testing.T, x, y []float64) *table.Dataset {
	t.Helper()

	stamps := make([]time.Time, len(x))
	for i := range stamps {
		stamps[i] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	ds := table.NewDataset("corr.csv", len(x))
	if err := ds.SetTimestamps(stamps); err != nil {
		t.Fatalf("SetTimestamps: %v", err)
	}
	if err := ds.AddLabelColumn(table.ColLocation, make([]string, len(x)), false); err != nil {
		t.Fatalf("AddLabelColumn: %v", err)
	}
	if err := ds.AddNumericColumn(table.ColFineAmount, x, false); err != nil {
		t.Fatalf("AddNumericColumn: %v", err)
	}
	if err := ds.AddNumericColumn(table.ColDriverAge, y, false); err != nil {
		t.Fatalf("AddNumericColumn: %v", err)
	}
	return ds
}

func TestCorrelations_PerfectLinearRelationship(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{2, 4, 6, 8, 10, 12, 14, 16}
	ds := correlationDataset(t, x, y)

	m := Correlations(ds, allRows(ds))

	if len(m.Columns) != 2 {
		t.Fatalf("Expected 2 numeric columns in matrix, got %d", len(m.Columns))
	}
	r := m.R[0][1]
	if math.Abs(r-1) > 1e-9 {
		t.Errorf("r = %f, want 1 for perfectly linear data", r)
	}
	if m.P[0][1] > 1e-6 {
		t.Errorf("p = %f, want ~0 for perfect correlation", m.P[0][1])
	}
}

func TestCorrelations_DiagonalIsOne(t *testing.T) {
	ds := testDataset(t)
	m := Correlations(ds, allRows(ds))

	for i := range m.Columns {
		if m.R[i][i] != 1 {
			t.Errorf("R[%d][%d] = %f, want 1", i, i, m.R[i][i])
		}
		if m.P[i][i] != 0 {
			t.Errorf("P[%d][%d] = %f, want 0", i, i, m.P[i][i])
		}
	}
}

func TestCorrelations_MatrixIsSymmetric(t *testing.T) {
	ds := testDataset(t)
	m := Correlations(ds, allRows(ds))

	for i := range m.Columns {
		for j := range m.Columns {
			ri, rj := m.R[i][j], m.R[j][i]
			if math.IsNaN(ri) && math.IsNaN(rj) {
				continue
			}
			if ri != rj {
				t.Errorf("R[%d][%d]=%f != R[%d][%d]=%f", i, j, ri, j, i, rj)
			}
		}
	}
}

func TestCorrelations_NaNCellsUsePairwiseComplete(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, math.NaN()}
	y := []float64{2, 4, 6, 8, 10, 999}
	ds := correlationDataset(t, x, y)

	m := Correlations(ds, allRows(ds))
	if len(m.Columns) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(m.Columns))
	}
	r := m.R[0][1]
	if math.Abs(r-1) > 1e-9 {
		t.Errorf("r = %f, want 1: the NaN pair must be excluded", r)
	}
}

func TestCorrelations_SparseColumnExcluded(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN(), 1, 2}
	ds := correlationDataset(t, x, y)

	m := Correlations(ds, allRows(ds))
	for _, col := range m.Columns {
		if col == table.ColDriverAge {
			// 2 usable values is below the minimum
			t.Errorf("Column with %d usable values should be excluded", 2)
		}
	}
}

func TestCorrelations_PValuesInRange(t *testing.T) {
	ds := testDataset(t)
	m := Correlations(ds, allRows(ds))

	for i := range m.Columns {
		for j := range m.Columns {
			p := m.P[i][j]
			if math.IsNaN(p) {
				continue
			}
			if p < 0 || p > 1 {
				t.Errorf("P[%d][%d] = %f outside [0,1]", i, j, p)
			}
		}
	}
}
