package tabfile

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"violens/domain/table"
	apperrors "violens/internal/errors"
)

const csvHeader = "Violation_ID,Date,Time,Location,Violation_Type,Vehicle_Type,Driver_Age,Driver_Gender,Fine_Amount,Payment_Status"

func loadCSV(t *testing.T, content string) (*table.Dataset, error) {
	t.Helper()
	return NewLoader().LoadReader(strings.NewReader(content), "test.csv")
}

func TestLoad_RowCountEqualsInputMinusDropped(t *testing.T) {
	content := csvHeader + "\n" +
		"V1,2024-01-05,09:30,Delhi,Speeding,Car,34,Male,500,Paid\n" +
		"V2,2024-02-10,14:00,Karnataka,Parking,Truck,45,Female,1000,Unpaid\n" +
		"V3,not-a-date,14:00,Delhi,Speeding,Car,30,Male,200,Paid\n" + // dropped: bad date
		"V4,2024-03-01,08:15,Goa,Signal Jump,Bike,22,Male,-50,Paid\n" + // dropped: negative fine
		"V5,2024-03-02,19:45,Delhi,Speeding,Car,28,Female,300,Pending\n"

	ds, err := loadCSV(t, content)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, 2, ds.Dropped())
	assert.Equal(t, 5, ds.Rows()+ds.Dropped(), "kept + dropped must equal input rows")
}

func TestLoad_MissingRequiredColumnNamesIt(t *testing.T) {
	// Fine_Amount column removed entirely
	content := "Violation_ID,Date,Time,Location,Violation_Type,Vehicle_Type,Driver_Age,Driver_Gender,Payment_Status\n" +
		"V1,2024-01-05,09:30,Delhi,Speeding,Car,34,Male,Paid\n"

	_, err := loadCSV(t, content)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeLoadError))
	assert.Contains(t, err.Error(), "Fine_Amount")
}

func TestLoad_EmptyRequiredCategoricalDropsRow(t *testing.T) {
	content := csvHeader + "\n" +
		"V1,2024-01-05,09:30,,Speeding,Car,34,Male,500,Paid\n" + // empty Location
		"V2,2024-01-06,10:00,Delhi,Speeding,Car,34,Male,500,Paid\n"

	ds, err := loadCSV(t, content)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Rows())
	assert.Equal(t, 1, ds.Dropped())
}

func TestLoad_UnparsableAgeKeptWithUnknownBucket(t *testing.T) {
	content := csvHeader + "\n" +
		"V1,2024-01-05,09:30,Delhi,Speeding,Car,unknown,Male,500,Paid\n"

	ds, err := loadCSV(t, content)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Rows(), "unparsable age must not drop the row")

	ages, ok := ds.Numeric(table.ColDriverAge)
	require.True(t, ok)
	assert.True(t, math.IsNaN(ages[0]))

	buckets, ok := ds.Label(table.ColAgeBucket)
	require.True(t, ok)
	assert.Equal(t, table.Unknown, buckets[0])
}

func TestLoad_DerivedColumnsAppended(t *testing.T) {
	content := csvHeader + "\n" +
		"V1,2024-01-05,09:30,Delhi,Speeding,Car,34,Male,500,Paid\n" + // Friday morning
		"V2,2024-02-10,22:45,Karnataka,Parking,Truck,17,Female,1000,Unpaid\n" // Saturday evening

	ds, err := loadCSV(t, content)
	require.NoError(t, err)

	days, _ := ds.Label(table.ColDayOfWeek)
	assert.Equal(t, []string{"Friday", "Saturday"}, days)

	hours, _ := ds.Label(table.ColHourBucket)
	assert.Equal(t, []string{"Morning", "Evening"}, hours)

	agesBuckets, _ := ds.Label(table.ColAgeBucket)
	assert.Equal(t, []string{"26-35", "<18"}, agesBuckets)

	months, _ := ds.Label(table.ColMonth)
	assert.Equal(t, []string{"2024-01", "2024-02"}, months)

	for _, derived := range []string{table.ColDayOfWeek, table.ColHourBucket, table.ColAgeBucket, table.ColMonth} {
		col, ok := ds.Schema().Lookup(derived)
		require.True(t, ok, "derived column %s missing from schema", derived)
		assert.True(t, col.Derived, "%s should be marked derived", derived)
	}
	col, _ := ds.Schema().Lookup(table.ColLocation)
	assert.False(t, col.Derived, "base columns stay base columns")
}

func TestLoad_CurrencySymbolsInFineAmount(t *testing.T) {
	content := csvHeader + "\n" +
		"V1,2024-01-05,09:30,Delhi,Speeding,Car,34,Male,\"₹1,500\",Paid\n"

	ds, err := loadCSV(t, content)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Rows())

	fines, _ := ds.Numeric(table.ColFineAmount)
	assert.Equal(t, 1500.0, fines[0])
}

func TestLoad_AlternateDateLayouts(t *testing.T) {
	content := csvHeader + "\n" +
		"V1,05-01-2024,09:30,Delhi,Speeding,Car,34,Male,500,Paid\n" + // 02-01-2006
		"V2,2024-01-06,10:00,Delhi,Speeding,Car,34,Male,500,Paid\n"

	ds, err := loadCSV(t, content)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Rows())
	assert.Equal(t, 0, ds.Dropped())
}

func TestLoad_OptionalColumnsFillUnknown(t *testing.T) {
	content := csvHeader + ",Weather_Condition,Previous_Violations\n" +
		"V1,2024-01-05,09:30,Delhi,Speeding,Car,34,Male,500,Paid,Rainy,2\n" +
		"V2,2024-01-06,10:00,Delhi,Speeding,Car,34,Male,500,Paid,,\n"

	ds, err := loadCSV(t, content)
	require.NoError(t, err)

	weather, ok := ds.Label(table.ColWeatherCondition)
	require.True(t, ok)
	assert.Equal(t, []string{"Rainy", table.Unknown}, weather)

	previous, ok := ds.Numeric(table.ColPreviousViolations)
	require.True(t, ok)
	assert.Equal(t, 2.0, previous[0])
	assert.True(t, math.IsNaN(previous[1]))
}

func TestLoad_AbsentOptionalColumnStaysOutOfSchema(t *testing.T) {
	content := csvHeader + "\n" +
		"V1,2024-01-05,09:30,Delhi,Speeding,Car,34,Male,500,Paid\n"

	ds, err := loadCSV(t, content)
	require.NoError(t, err)
	assert.False(t, ds.Schema().Has(table.ColWeatherCondition))
	assert.False(t, ds.Schema().Has(table.ColSpeedLimit))
}

func TestLoad_EmptyFileFails(t *testing.T) {
	_, err := loadCSV(t, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeLoadError))
}

func TestLoad_BlankLinesIgnored(t *testing.T) {
	content := csvHeader + "\n" +
		"V1,2024-01-05,09:30,Delhi,Speeding,Car,34,Male,500,Paid\n" +
		"\n" +
		",,,,,,,,,\n"

	ds, err := loadCSV(t, content)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Rows())
	assert.Equal(t, 0, ds.Dropped(), "blank records are skipped, not counted as drops")
}
