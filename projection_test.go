package main

import (
	"testing"
	"time"
)

func floatEqual(a float64, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.01
}

func yearPeriod(year int) TreatmentPeriod {
	return TreatmentPeriod{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestProjectMidYear(t *testing.T) {
	period := yearPeriod(2025)
	fills := []FillEvent{
		mkFill(2025, time.January, 1, 30),
		mkFill(2025, time.February, 1, 30),
	}

	coveredDays := mergeCoverage(fills, period.Days())
	if coveredDays != 60 {
		t.Fatalf("expected 60 covered days, got %d", coveredDays)
	}

	gap := gapBudget(period.Days(), coveredDays, 0.20)
	if gap.Allowed != 73 {
		t.Fatalf("expected gap allowance floor(365*0.2)=73, got %d", gap.Allowed)
	}
	if gap.Remaining != 73-305 {
		t.Fatalf("expected negative gap remainder %d, got %d", 73-305, gap.Remaining)
	}

	asOf := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)
	result := project(period, fills, coveredDays, gap, asOf, 30)

	if !floatEqual(result.PDC, 60.0/365.0*100) {
		t.Fatalf("unexpected pdc: %f", result.PDC)
	}
	if result.DaysToRunout != 16 {
		t.Fatalf("expected 16 days to runout, got %d", result.DaysToRunout)
	}
	if result.CurrentSupplyDays != 16 {
		t.Fatalf("expected 16 days of supply on hand, got %d", result.CurrentSupplyDays)
	}
	if !floatEqual(result.PDCStatusQuo, 76.0/365.0*100) {
		t.Fatalf("unexpected status quo projection: %f", result.PDCStatusQuo)
	}
	// Perfect adherence through Dec 31 would exceed 100; capped
	if result.PDCPerfect != 100 {
		t.Fatalf("expected perfect projection capped at 100, got %f", result.PDCPerfect)
	}
	if result.RefillsNeeded != 11 {
		t.Fatalf("expected 11 refills needed, got %d", result.RefillsNeeded)
	}
	if result.FillCount != 2 {
		t.Fatalf("expected fill count 2, got %d", result.FillCount)
	}
	if !result.LastFillDate.Equal(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last fill date: %s", result.LastFillDate.Format("2006-01-02"))
	}
}

func TestProjectAlreadyOutOfSupply(t *testing.T) {
	period := yearPeriod(2025)
	fills := []FillEvent{
		mkFill(2025, time.January, 1, 30),
		mkFill(2025, time.January, 31, 30),
	}
	coveredDays := mergeCoverage(fills, period.Days())
	gap := gapBudget(period.Days(), coveredDays, 0.20)

	// Last supply ran out Mar 2; a month later the runout is negative
	asOf := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	result := project(period, fills, coveredDays, gap, asOf, 30)

	if result.DaysToRunout != -30 {
		t.Fatalf("expected -30 days to runout, got %d", result.DaysToRunout)
	}
	if result.CurrentSupplyDays != 0 {
		t.Fatalf("expected 0 supply days on hand, got %d", result.CurrentSupplyDays)
	}
}

// Boundary values for the refill estimate. Ceiling-of-ratio with a floor
// of 1 whenever any days are needed; the floor only shows up when the
// typical supply exceeds the shortfall.
func TestProjectRefillsNeededBoundaries(t *testing.T) {
	fills := []FillEvent{
		mkFill(2025, time.January, 1, 30),
		mkFill(2025, time.January, 31, 30),
	}
	asOf := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		periodEnd time.Time
		typical   int
		expected  int
	}{
		{"supply covers period end", time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC), 30, 0},
		{"shortfall of exact multiple", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), 30, 1},
		{"one day past the multiple", time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC), 30, 2},
		{"floor of one for small shortfall", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), 90, 1},
	}

	for _, tc := range cases {
		period := TreatmentPeriod{
			Start: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   tc.periodEnd,
		}
		coveredDays := mergeCoverage(fills, period.Days())
		gap := gapBudget(period.Days(), coveredDays, 0.20)
		result := project(period, fills, coveredDays, gap, asOf, tc.typical)
		if result.RefillsNeeded != tc.expected {
			t.Fatalf("%s: expected %d refills, got %d", tc.name, tc.expected, result.RefillsNeeded)
		}
	}
}

func TestCappedPercentBounds(t *testing.T) {
	if got := cappedPercent(150, 100); got != 100 {
		t.Fatalf("expected cap at 100, got %f", got)
	}
	if got := cappedPercent(0, 100); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
	if got := cappedPercent(10, 0); got != 0 {
		t.Fatalf("expected 0 for empty period, got %f", got)
	}
}

func TestTreatmentPeriodDays(t *testing.T) {
	p := TreatmentPeriod{
		Start: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	if p.Days() != 1 {
		t.Fatalf("same-day period must be 1 day, got %d", p.Days())
	}
}

func TestGapBudgetArithmetic(t *testing.T) {
	gap := gapBudget(100, 85, 0.20)
	if gap.Used != 15 || gap.Allowed != 20 || gap.Remaining != 5 {
		t.Fatalf("unexpected gap budget: %+v", gap)
	}

	// Remaining may go negative once the allowance is overspent
	gap = gapBudget(100, 70, 0.20)
	if gap.Remaining != -10 {
		t.Fatalf("expected -10 remaining, got %d", gap.Remaining)
	}
}
