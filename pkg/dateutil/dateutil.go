package dateutil

import "time"

// ParseYYYYMMDD parses an 8-digit Gregorian date string like "20240101"
func ParseYYYYMMDD(s string) (time.Time, error) {
	return time.Parse("20060102", s)
}

// FormatYYYYMMDD formats a date as an 8-digit string like "20240101"
func FormatYYYYMMDD(date time.Time) string {
	return date.Format("20060102")
}

// NextDay returns the start of the day after the given date
func NextDay(date time.Time) time.Time {
	return StartOfDay(date.AddDate(0, 0, 1))
}

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// ROCYear returns the Republic of China calendar year for the given date
// (Gregorian year minus 1911), used in Taiwanese government filenames
func ROCYear(date time.Time) int {
	return date.Year() - 1911
}

// Today returns today's date (start of day)
func Today() time.Time {
	return StartOfDay(time.Now())
}
