package hr

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate builds a UTC calendar date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return Date(t), nil
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// YearBounds returns January 1 and December 31 of year. Both ends are inclusive
// calendar dates.
func YearBounds(year int) (start, end time.Time) {
	return NewDate(year, time.January, 1), NewDate(year, time.December, 31)
}

// MonthBounds returns the first and last day of a month.
func MonthBounds(year int, month time.Month) (start, end time.Time) {
	start = NewDate(year, month, 1)
	return start, start.AddDate(0, 1, -1)
}

// DaysBetween counts whole days from -> to. Negative when to is earlier.
func DaysBetween(from, to time.Time) int {
	return int(Date(to).Sub(Date(from)).Hours() / 24)
}
