package main

import "testing"

func TestScorePriorityComposition(t *testing.T) {
	cfg := DefaultCalcConfig()

	// F1 + out of supply + final calendar quarter
	flags := FragilityFlags{IsOutOfSupply: true}
	score, bonuses := scorePriority(cfg, TierF1Imminent, flags, true)

	if score != 155 {
		t.Fatalf("expected priority score 155, got %d", score)
	}
	if bonuses.Base != 100 || bonuses.OutOfSupply != 30 || bonuses.YearEnd != 25 {
		t.Fatalf("unexpected bonus breakdown: %+v", bonuses)
	}
	if urgencyLevel(cfg, score) != "EXTREME" {
		t.Fatalf("expected EXTREME urgency, got %s", urgencyLevel(cfg, score))
	}
}

func TestScorePriorityZeroForTerminalTiers(t *testing.T) {
	cfg := DefaultCalcConfig()
	flags := FragilityFlags{IsOutOfSupply: true, IsMultiMeasure: true, IsNewPatient: true}

	for _, tier := range []Tier{TierCompliant, TierUnsalvageable} {
		score, bonuses := scorePriority(cfg, tier, flags, true)
		if score != 0 {
			t.Fatalf("expected score 0 for %s, got %d", tier, score)
		}
		if bonuses != (PriorityBonuses{}) {
			t.Fatalf("expected empty bonuses for %s, got %+v", tier, bonuses)
		}
	}
}

func TestScorePriorityCappedAtMaxCombination(t *testing.T) {
	cfg := DefaultCalcConfig()

	// All four bonuses on an F1 would exceed the defined maximum; the
	// total is capped there
	flags := FragilityFlags{IsOutOfSupply: true, IsMultiMeasure: true, IsNewPatient: true}
	score, _ := scorePriority(cfg, TierF1Imminent, flags, true)

	if score != cfg.MaxPriorityScore {
		t.Fatalf("expected score capped at %d, got %d", cfg.MaxPriorityScore, score)
	}
}

func TestScorePriorityPartialBonuses(t *testing.T) {
	cfg := DefaultCalcConfig()

	// F3 + multi-measure + new patient, outside the final quarter
	flags := FragilityFlags{IsMultiMeasure: true, IsNewPatient: true}
	score, bonuses := scorePriority(cfg, TierF3Moderate, flags, false)

	if score != 85 {
		t.Fatalf("expected priority score 85, got %d", score)
	}
	if bonuses.YearEnd != 0 || bonuses.OutOfSupply != 0 {
		t.Fatalf("unexpected bonuses applied: %+v", bonuses)
	}
}

func TestUrgencyLevels(t *testing.T) {
	cfg := DefaultCalcConfig()

	cases := []struct {
		score    int
		expected string
	}{
		{155, "EXTREME"},
		{150, "EXTREME"},
		{149, "HIGH"},
		{100, "HIGH"},
		{99, "MODERATE"},
		{50, "MODERATE"},
		{49, "LOW"},
		{0, "LOW"},
	}

	for _, tc := range cases {
		if got := urgencyLevel(cfg, tc.score); got != tc.expected {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.expected, got)
		}
	}
}
