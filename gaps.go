package main

import "math"

// Gap budget derived purely from the treatment day and covered day counts.
// The allowance rounds down ("days allowed" always floors) and the
// remainder may go negative once a patient has overspent the budget.
type GapBudget struct {
	Used      int
	Allowed   int
	Remaining int
}

func gapBudget(treatmentDays, coveredDays int, gapRatio float64) GapBudget {
	used := treatmentDays - coveredDays
	allowed := int(math.Floor(float64(treatmentDays) * gapRatio))

	return GapBudget{
		Used:      used,
		Allowed:   allowed,
		Remaining: allowed - used,
	}
}
