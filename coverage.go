package main

import "time"

/*
 * Interval coverage merge.
 *
 * The running-pointer walk below is part of the audited formula: sort the
 * fills, hold a single coveredUntil pointer, and count only the days each
 * fill adds past that pointer. Each calendar day is counted at most once.
 * Do not swap this for a generic interval-union; tie-break differences
 * would silently change audited results.
 */

// normalizeFills applies the sanctioned silent correction (daysSupply at
// or below zero becomes the configured default) and returns the fills
// sorted ascending by fill date.
func normalizeFills(fills []FillEvent, defaultDaysSupply int) []FillEvent {
	normalized := make([]FillEvent, len(fills))
	copy(normalized, fills)

	for i := range normalized {
		if normalized[i].DaysSupply <= 0 {
			normalized[i].DaysSupply = defaultDaysSupply
		}
	}

	// Sort ascending by fill date
	return sortEvents(normalized, func(f FillEvent) time.Time {
		return f.FillDate.Time
	}, true)
}

// mergeCoverage returns the total covered days for a sorted fill list,
// capped at the treatment period's day count.
func mergeCoverage(fills []FillEvent, treatmentDays int) int {
	if len(fills) == 0 {
		return 0
	}

	coveredDays := 0
	coveredUntil := dateOnly(fills[0].FillDate.Time)

	for _, fill := range fills {
		fillDate := dateOnly(fill.FillDate.Time)
		newEnd := fillDate.AddDate(0, 0, fill.DaysSupply)

		if fillDate.After(coveredUntil) {
			// Gap before this fill; the full supply counts
			coveredDays += fill.DaysSupply
			coveredUntil = newEnd
		} else if newEnd.After(coveredUntil) {
			// Overlaps existing coverage; only the tail counts
			coveredDays += daysBetween(coveredUntil, newEnd)
			coveredUntil = newEnd
		}
		// Fully contained fills add nothing
	}

	// Coverage can never exceed the period itself
	if coveredDays > treatmentDays {
		coveredDays = treatmentDays
	}

	return coveredDays
}
