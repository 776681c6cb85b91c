package main

import (
	"fmt"
	"sort"
	"time"
)

func parseDate(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	var t time.Time
	var err error
	for _, layout := range layouts {
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// Strips the clock from a timestamp so all calculations operate on whole
// calendar days in the value's own location
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Signed count of calendar days from start to end. Same day yields 0,
// end before start yields a negative count.
func daysBetween(start, end time.Time) int {
	s := dateOnly(start)
	e := dateOnly(end)
	return int(e.Sub(s).Hours() / 24)
}

func isAfterDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()

	// Use the local timezone from t1
	loc := t1.Location()

	// Compare only the year, month, and day in the local timezone
	return time.Date(y1, m1, d1, 0, 0, 0, 0, loc).After(
		time.Date(y2, m2, d2, 0, 0, 0, 0, loc),
	)
}

func startOfYear(year int, loc *time.Location) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
}

func endOfYear(year int, loc *time.Location) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, loc)
}

// The final calendar quarter (Oct-Dec) drives the year-end priority bonus
func inFinalQuarter(t time.Time) bool {
	return t.Month() >= time.October
}

func sortEvents[T any](events []T, getTime func(T) time.Time, asc bool) []T {
	sort.Slice(events, func(i, j int) bool {
		t1 := getTime(events[i])
		t2 := getTime(events[j])
		if asc {
			return t1.Before(t2)
		} else {
			return !t1.Before(t2)
		}
	})
	return events
}

func filterByWindow[T any](list []T, start, end time.Time, getTime func(T) time.Time) []T {
	// Initialize the filtered list
	var filtered []T

	// Iterate over values in the list, extracting the time value based on the "getter" function
	for _, item := range list {
		t := dateOnly(getTime(item))
		if !t.Before(dateOnly(start)) && !t.After(dateOnly(end)) {
			filtered = append(filtered, item)
		}
	}

	return filtered
}
