package main

import (
	"fmt"
	"time"
)

// Evaluate runs the full per-patient pipeline for one measure: window
// resolution, coverage merge, gap budget, projections, fragility
// classification, and priority scoring. It is pure over its inputs; the
// same input and config always produce the same results.
func Evaluate(cfg CalcConfig, input MeasureInput) (*AdherenceResult, *FragilityResult, error) {
	windowStart, windowEnd, asOf, err := resolveWindow(cfg, input)
	if err != nil {
		return nil, nil, err
	}

	if input.RefillsRemaining < 0 {
		return nil, nil, NewInvalidInputError(fmt.Sprintf("refillsRemaining cannot be negative: %d", input.RefillsRemaining))
	}

	if err := validateFillDates(input.Fills, windowEnd); err != nil {
		return nil, nil, err
	}

	if len(input.Fills) == 0 {
		return nil, nil, NewInsufficientDataError("no fill events supplied")
	}

	// Typical supply for refill estimation falls back to the same default
	// as an uncorrected daysSupply
	typicalDaysSupply := input.TypicalDaysSupply
	if typicalDaysSupply <= 0 {
		typicalDaysSupply = cfg.DefaultDaysSupply
	}

	// Normalize and sort, then restrict to the measurement window. Fills
	// after the window end (e.g. ahead of a rolling as-of date) do not
	// participate in the merge.
	fills := normalizeFills(input.Fills, cfg.DefaultDaysSupply)
	fills = filterByWindow(fills, windowStart, windowEnd, func(f FillEvent) time.Time {
		return f.FillDate.Time
	})

	period, err := resolvePeriod(fills, windowStart, windowEnd)
	if err != nil {
		return nil, nil, err
	}

	// One in-window fill means therapy has only just indexed: the record
	// is not yet measurable, which is distinct from measuring 0% adherent
	if len(fills) < 2 {
		return nil, nil, NewInsufficientDataError("a single fill event is not yet measurable")
	}

	coveredDays := mergeCoverage(fills, period.Days())
	gap := gapBudget(period.Days(), coveredDays, cfg.GapRatio)
	adherence := project(period, fills, coveredDays, gap, asOf, typicalDaysSupply)

	tier, budget, tightened := classify(cfg, adherence, input.RefillsRemaining, asOf)

	daysToYearEnd := daysBetween(asOf, endOfYear(asOf.Year(), asOf.Location()))
	flags := FragilityFlags{
		IsCompliant:     tier == TierCompliant,
		IsUnsalvageable: tier == TierUnsalvageable,
		IsOutOfSupply:   adherence.DaysToRunout <= 0,
		IsYearEndWindow: daysToYearEnd < cfg.YearEndWindowDays,
		IsMultiMeasure:  input.ConcurrentMeasures >= 2,
		IsNewPatient:    input.FirstMeasurementPeriod,
		IsTightened:     tightened,
	}

	score, bonuses := scorePriority(cfg, tier, flags, inFinalQuarter(asOf))
	guidance := tierGuidanceTable[tier]

	fragility := &FragilityResult{
		Tier:                 tier,
		TierLevel:            int(tier),
		DelayBudgetPerRefill: budget,
		ContactWindow:        guidance.ContactWindow,
		Action:               guidance.Action,
		PriorityScore:        score,
		UrgencyLevel:         urgencyLevel(cfg, score),
		Flags:                flags,
		Bonuses:              bonuses,
	}

	return adherence, fragility, nil
}

// resolveWindow determines the calendar window and the effective as-of
// date. A measurement year fixes the window at Jan 1 through Dec 31; an
// as-of date alone produces a rolling window ending on that date.
func resolveWindow(cfg CalcConfig, input MeasureInput) (time.Time, time.Time, time.Time, error) {
	year := input.MeasurementYear
	if year == 0 {
		year = cfg.MeasurementYear
	}

	loc := time.UTC
	if !input.AsOf.IsZero() {
		loc = input.AsOf.Location()
	}

	if year == 0 && input.AsOf.IsZero() {
		return time.Time{}, time.Time{}, time.Time{}, NewInvalidInputError("a measurement year or as-of date is required")
	}

	if year == 0 {
		// Rolling window: calendar start of the as-of year through the as-of date
		asOf := dateOnly(input.AsOf.Time)
		return startOfYear(asOf.Year(), loc), asOf, asOf, nil
	}

	windowStart := startOfYear(year, loc)
	windowEnd := endOfYear(year, loc)

	// Default to a retrospective run over the full year
	asOf := windowEnd
	if !input.AsOf.IsZero() {
		asOf = dateOnly(input.AsOf.Time)
		if asOf.Before(windowStart) {
			return time.Time{}, time.Time{}, time.Time{}, NewInvalidInputError(fmt.Sprintf("as-of date %s precedes measurement year %d", asOf.Format("2006-01-02"), year))
		}
		if asOf.After(windowEnd) {
			asOf = windowEnd
		}
	}

	return windowStart, windowEnd, asOf, nil
}

// validateFillDates rejects records whose fill dates fall outside a sane
// range. This is a loud rejection; the only sanctioned silent correction
// is the daysSupply default.
func validateFillDates(fills []FillEvent, windowEnd time.Time) error {
	horizon := dateOnly(windowEnd).AddDate(1, 0, 0)

	for _, fill := range fills {
		d := fill.FillDate.Time
		if d.IsZero() {
			return NewInvalidInputError("fill event is missing a fill date")
		}
		if d.Year() < minSaneFillYear {
			return NewInvalidInputError(fmt.Sprintf("fill date %s is implausibly old", d.Format("2006-01-02")))
		}
		if isAfterDay(d, horizon) {
			return NewInvalidInputError(fmt.Sprintf("fill date %s is beyond the measurement horizon", d.Format("2006-01-02")))
		}
	}

	return nil
}
