package main

import (
	"math"
	"time"
)

/*
 * Adherence projections.
 *
 * Numeric policy (deliberate and load-bearing):
 *   - percentages are capped to [0, 100]
 *   - day counts are integers
 *   - "days needed" rounds up, "days allowed" rounds down
 */

// cappedPercent converts a covered/total ratio to a percentage in [0, 100]
func cappedPercent(covered, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(covered) / float64(total) * 100
	return math.Min(math.Max(pct, 0), 100)
}

// project computes the current PDC plus both forward-looking projections
// and the runout/refill estimates for a normalized, sorted, in-window
// fill list.
func project(period TreatmentPeriod, fills []FillEvent, coveredDays int, gap GapBudget, asOf time.Time, typicalDaysSupply int) *AdherenceResult {
	treatmentDays := period.Days()

	// Days of calendar left between the as-of date and the window end
	daysToPeriodEnd := daysBetween(asOf, period.End)

	// Runout is anchored on the most recent fill; negative means the
	// patient is already out of supply
	last := fills[len(fills)-1]
	runoutDate := dateOnly(last.FillDate.Time).AddDate(0, 0, last.DaysSupply)
	daysToRunout := daysBetween(asOf, runoutDate)

	currentSupplyDays := daysToRunout
	if currentSupplyDays < 0 {
		currentSupplyDays = 0
	}

	// Status quo assumes no refills beyond the supply already on hand
	onHand := currentSupplyDays
	if onHand > daysToPeriodEnd {
		onHand = daysToPeriodEnd
	}

	// Refills needed to stay covered through period end: ceiling of the
	// shortfall over the typical supply, with an explicit floor of 1
	// whenever any additional days are needed
	daysShort := daysToPeriodEnd - currentSupplyDays
	refillsNeeded := 0
	if daysShort > 0 {
		refillsNeeded = int(math.Ceil(float64(daysShort) / float64(typicalDaysSupply)))
		if refillsNeeded < 1 {
			refillsNeeded = 1
		}
	}

	return &AdherenceResult{
		PDC:               cappedPercent(coveredDays, treatmentDays),
		CoveredDays:       coveredDays,
		TreatmentDays:     treatmentDays,
		GapDaysUsed:       gap.Used,
		GapDaysAllowed:    gap.Allowed,
		GapDaysRemaining:  gap.Remaining,
		PDCStatusQuo:      cappedPercent(coveredDays+onHand, treatmentDays),
		PDCPerfect:        cappedPercent(coveredDays+daysToPeriodEnd, treatmentDays),
		DaysToRunout:      daysToRunout,
		CurrentSupplyDays: currentSupplyDays,
		RefillsNeeded:     refillsNeeded,
		LastFillDate:      Date{dateOnly(last.FillDate.Time)},
		FillCount:         len(fills),
		MeasurementPeriod: Period{
			Start: Date{period.Start},
			End:   Date{period.End},
		},
	}
}
