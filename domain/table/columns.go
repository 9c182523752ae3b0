package table

// Canonical column names for the traffic violations dataset.
const (
	ColViolationID   = "Violation_ID"
	ColDate          = "Date"
	ColTime          = "Time"
	ColLocation      = "Location"
	ColViolationType = "Violation_Type"
	ColVehicleType   = "Vehicle_Type"
	ColDriverAge     = "Driver_Age"
	ColDriverGender  = "Driver_Gender"
	ColFineAmount    = "Fine_Amount"
	ColPaymentStatus = "Payment_Status"

	ColLicenseType        = "License_Type"
	ColWeatherCondition   = "Weather_Condition"
	ColRoadCondition      = "Road_Condition"
	ColSpeedLimit         = "Speed_Limit"
	ColRecordedSpeed      = "Recorded_Speed"
	ColPenaltyPoints      = "Penalty_Points"
	ColPreviousViolations = "Previous_Violations"
	ColOfficerID          = "Officer_ID"

	ColDayOfWeek  = "Day_Of_Week"
	ColHourBucket = "Hour_Bucket"
	ColAgeBucket  = "Age_Bucket"
	ColMonth      = "Month"
)

// Unknown is the fill value for missing categorical cells.
const Unknown = "Unknown"

// RequiredColumns must all be present in an input file. A missing one
// fails the load with an error naming it.
var RequiredColumns = []string{
	ColViolationID,
	ColDate,
	ColTime,
	ColLocation,
	ColViolationType,
	ColVehicleType,
	ColDriverAge,
	ColDriverGender,
	ColFineAmount,
	ColPaymentStatus,
}

// Canonical display orders for derived bucket columns. Aggregations over
// these columns present groups in this order, not by count.
var (
	DayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

	HourBucketOrder = []string{"Night", "Morning", "Afternoon", "Evening"}

	AgeBucketOrder = []string{"<18", "18-25", "26-35", "36-50", "51-65", "65+", Unknown}
)

// BucketOrder returns the fixed display order for a derived bucket column,
// or nil when the column has no canonical order.
func BucketOrder(column string) []string {
	switch column {
	case ColDayOfWeek:
		return DayOrder
	case ColHourBucket:
		return HourBucketOrder
	case ColAgeBucket:
		return AgeBucketOrder
	default:
		return nil
	}
}
