package model

import "time"

// DateLayout is the calendar-date format used for booking and attendance
// dates (no time component).
const DateLayout = "2006-01-02"

// DateOf renders the calendar date of t in t's own location.
func DateOf(t time.Time) string { return t.Format(DateLayout) }

// ValidDate reports whether s is a well formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
