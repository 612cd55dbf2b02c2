// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"
)

// DateLayout is the format of as-of dates in stored records and API responses.
const DateLayout = "2006-01-02"

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// LookbackWindow returns the interval ending at now and starting the given
// number of calendar months earlier.
func LookbackWindow(now time.Time, months int) (start, end time.Time) {
	return now.AddDate(0, -months, 0), now
}

// ParseAsOf parses an as-of date. An empty string yields the zero time.
func ParseAsOf(date string) (time.Time, error) {
	if date == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("as-of date %q must use layout %s: %w", date, DateLayout, err)
	}
	return t, nil
}

// FormatAsOf is the inverse of ParseAsOf.
func FormatAsOf(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
