// Package dates implements the calendar arithmetic behind the dashboard
// filters: day and month keys, Monday-based weeks, and clamping a week to
// the calendar month being displayed.
package dates

import "time"

// DayLayout is the stored form of a calendar day.
const DayLayout = "2006-01-02"

// MonthLayout is the prefix used for monthly aggregation.
const MonthLayout = "2006-01"

// DayKey formats t as a YYYY-MM-DD calendar day.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// MonthKey formats t as a YYYY-MM month key.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseDay parses a YYYY-MM-DD calendar day.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}

// IsDayKey reports whether s is a well-formed YYYY-MM-DD calendar day.
func IsDayKey(s string) bool {
	_, err := ParseDay(s)
	return err == nil
}

// IsMonthKey reports whether s is a well-formed YYYY-MM month key.
func IsMonthKey(s string) bool {
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}

// WeekStart returns the Monday of the week containing t, at midnight.
func WeekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	diff := -6 // Sunday belongs to the week started six days earlier
	if wd := int(d.Weekday()); wd != 0 {
		diff = 1 - wd
	}
	return d.AddDate(0, 0, diff)
}

// MonthBounds returns the first and last day of the month named by key.
func MonthBounds(key string) (time.Time, time.Time, error) {
	first, err := time.Parse(MonthLayout, key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}

// ClampWeekToMonth restricts the Monday–Sunday week starting at monday to
// the month named by key. Days of the adjacent month are cut off.
func ClampWeekToMonth(monday time.Time, key string) (time.Time, time.Time, error) {
	first, last, err := MonthBounds(key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := monday
	end := monday.AddDate(0, 0, 6)
	if start.Before(first) {
		start = first
	}
	if end.After(last) {
		end = last
	}
	return start, end, nil
}

// WeekRangeLabel renders the clipped Mon–Sun range of the week starting at
// monday for the month view: "Mar 2 – March 8" inside one month,
// "Mar 30 – Apr 5" across a boundary before clipping collapses it, and a
// bare "Mar 1" when the clipped range is a single day.
func WeekRangeLabel(monday time.Time, key string) (string, error) {
	start, end, err := ClampWeekToMonth(monday, key)
	if err != nil {
		return "", err
	}

	if start.Equal(end) {
		return start.Format("Jan 2"), nil
	}

	right := "Jan 2"
	if start.Year() == end.Year() && start.Month() == end.Month() {
		right = "January 2"
	}
	return start.Format("Jan 2") + " – " + end.Format(right), nil
}
