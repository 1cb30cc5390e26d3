package core

import "time"

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	MonthLayout    = "2006-01"
)

// ParseDate parses a "2006-01-02" calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ParseDateTime parses a "2006-01-02 15:04:05" timestamp in UTC.
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, s, time.UTC)
}

// DateKey formats t as the "2006-01-02" key used by nightly rate maps.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthKey formats t as the "2006-01" key used by month buckets.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// MonthStart returns the first day of t's month at UTC midnight.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DayFloor truncates t to UTC midnight, dropping any time of day.
func DayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b, comparing calendar
// dates only. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DayFloor(b).Sub(DayFloor(a)) / (24 * time.Hour))
}

// DaysInMonth returns the number of calendar days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
