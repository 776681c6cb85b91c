package main

import "time"

// TreatmentPeriod is the effective measurement window: the index fill date
// through the window end (Dec 31 of the measurement year, or the caller's
// as-of date for rolling calculations).
type TreatmentPeriod struct {
	Start time.Time
	End   time.Time
}

// Length in days, inclusive of both endpoints. Always >= 1.
func (p TreatmentPeriod) Days() int {
	return daysBetween(p.Start, p.End) + 1
}

// resolvePeriod determines the measurement window from sorted fills.
// The index fill is the first fill on or after the window's calendar
// start; without one the record is not measurable.
func resolvePeriod(fills []FillEvent, windowStart, windowEnd time.Time) (TreatmentPeriod, error) {
	if len(fills) == 0 {
		return TreatmentPeriod{}, NewInsufficientDataError("no fill events supplied")
	}

	// Fills arrive sorted ascending, so the first in-window fill is the index fill
	for _, fill := range fills {
		d := dateOnly(fill.FillDate.Time)
		if !d.Before(windowStart) && !d.After(windowEnd) {
			return TreatmentPeriod{Start: d, End: dateOnly(windowEnd)}, nil
		}
	}

	return TreatmentPeriod{}, NewInsufficientDataError("no fill event within the measurement window")
}
