package contextutils

import (
	"time"
)

// StartOfDay truncates a timestamp to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek truncates a timestamp to the preceding Monday at midnight.
// Weekly buckets in the trend views are keyed by this value.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	// time.Weekday is Sunday==0; shift so Monday starts the week.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// DaysBetween returns the number of whole calendar days from `from` to `to`.
// Both values are truncated to their day boundary first, so partial days do
// not count. A `to` earlier than `from` yields a negative result.
func DaysBetween(from, to time.Time) int {
	fromDay := StartOfDay(from)
	toDay := StartOfDay(to)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
