package tabfile

import (
	"strconv"
	"strings"
	"time"

	"violens/domain/table"
)

// Accepted layouts for the Date column. Tried in order; the first match wins.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
}

// Accepted layouts for the Time column.
var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04:05 PM",
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTimeOfDay returns the hour and minute of a Time cell.
func parseTimeOfDay(value string) (hour, minute int, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// numericCleaner strips currency symbols and separators that show up in
// fine amounts exported from spreadsheets.
var numericCleaner = strings.NewReplacer("₹", "", "$", "", ",", "", " ", "")

func parseNumber(value string) (float64, bool) {
	value = numericCleaner.Replace(strings.TrimSpace(value))
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// hourBucket assigns an hour of day to its part-of-day band.
func hourBucket(hour int) string {
	switch {
	case hour < 6:
		return "Night"
	case hour < 12:
		return "Morning"
	case hour < 18:
		return "Afternoon"
	default:
		return "Evening"
	}
}

// ageBucket assigns a driver age to its band. Unparsable ages land in
// the Unknown band instead of dropping the row.
func ageBucket(age float64, ok bool) string {
	if !ok || age < 0 {
		return table.Unknown
	}
	switch {
	case age < 18:
		return "<18"
	case age <= 25:
		return "18-25"
	case age <= 35:
		return "26-35"
	case age <= 50:
		return "36-50"
	case age <= 65:
		return "51-65"
	default:
		return "65+"
	}
}

// monthKey formats a timestamp as its YYYY-MM bucket.
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
