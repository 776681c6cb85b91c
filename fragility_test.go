package main

import (
	"testing"
	"time"
)

// Mid-year as-of date keeps the year-end tightening rule out of play
var midYear = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func TestClassifyCompliantPrecedence(t *testing.T) {
	cfg := DefaultCalcConfig()

	// Delay-budget math alone would suggest F3 here, but the status quo
	// projection already clears the threshold
	adherence := &AdherenceResult{
		PDCStatusQuo:     82,
		PDCPerfect:       70,
		GapDaysRemaining: 8,
	}

	tier, _, tightened := classify(cfg, adherence, 1, midYear)
	if tier != TierCompliant {
		t.Fatalf("expected COMPLIANT, got %s", tier)
	}
	if tightened {
		t.Fatalf("COMPLIANT must never be tightened")
	}
}

func TestClassifyUnsalvageablePrecedence(t *testing.T) {
	cfg := DefaultCalcConfig()

	adherence := &AdherenceResult{
		PDCStatusQuo:     63,
		PDCPerfect:       68,
		GapDaysRemaining: 40,
	}

	tier, _, _ := classify(cfg, adherence, 5, midYear)
	if tier != TierUnsalvageable {
		t.Fatalf("expected T5_UNSALVAGEABLE, got %s", tier)
	}
}

func TestClassifyDelayBudgetMapping(t *testing.T) {
	cfg := DefaultCalcConfig()

	cases := []struct {
		name             string
		gapDaysRemaining int
		refillsRemaining int
		expected         Tier
	}{
		{"budget 2 maps to F1", 20, 10, TierF1Imminent},
		{"budget 5 maps to F2", 25, 5, TierF2Fragile},
		{"budget 10 maps to F3", 10, 1, TierF3Moderate},
		{"budget 20 maps to F4", 20, 1, TierF4Comfortable},
		{"budget 21 maps to F5", 21, 1, TierF5Safe},
		{"negative budget maps to F1", -6, 3, TierF1Imminent},
	}

	for _, tc := range cases {
		adherence := &AdherenceResult{
			PDCStatusQuo:     70,
			PDCPerfect:       90,
			GapDaysRemaining: tc.gapDaysRemaining,
		}
		tier, _, _ := classify(cfg, adherence, tc.refillsRemaining, midYear)
		if tier != tc.expected {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.expected, tier)
		}
	}
}

func TestClassifyNoRefillsRemaining(t *testing.T) {
	cfg := DefaultCalcConfig()

	// Positive gap budget with nothing to refill is effectively unbounded
	adherence := &AdherenceResult{
		PDCStatusQuo:     70,
		PDCPerfect:       90,
		GapDaysRemaining: 12,
	}
	tier, budget, _ := classify(cfg, adherence, 0, midYear)
	if tier != TierF5Safe {
		t.Fatalf("expected F5 with positive gap budget and no refills, got %s", tier)
	}
	if budget != 0 {
		t.Fatalf("expected zero recorded budget when refills are exhausted, got %f", budget)
	}

	// Exhausted budget with no refills is critical
	adherence.GapDaysRemaining = 0
	tier, _, _ = classify(cfg, adherence, 0, midYear)
	if tier != TierF1Imminent {
		t.Fatalf("expected F1 with exhausted gap budget and no refills, got %s", tier)
	}
}

func TestTightenTier(t *testing.T) {
	cfg := DefaultCalcConfig()

	cases := []struct {
		name          string
		tier          Tier
		daysToYearEnd int
		gapRemaining  int
		expected      Tier
		tightened     bool
	}{
		{"F3 promotes to F2", TierF3Moderate, 45, 4, TierF2Fragile, true},
		{"gap above limit stays F3", TierF3Moderate, 45, 15, TierF3Moderate, false},
		{"F5 promotes to F4", TierF5Safe, 30, 2, TierF4Comfortable, true},
		{"F1 never promotes", TierF1Imminent, 45, 4, TierF1Imminent, false},
		{"COMPLIANT never promotes", TierCompliant, 45, 4, TierCompliant, false},
		{"T5 never promotes", TierUnsalvageable, 45, 4, TierUnsalvageable, false},
		{"window boundary is exclusive", TierF3Moderate, 60, 4, TierF3Moderate, false},
	}

	for _, tc := range cases {
		tier, tightened := tightenTier(cfg, tc.tier, tc.daysToYearEnd, tc.gapRemaining)
		if tier != tc.expected || tightened != tc.tightened {
			t.Fatalf("%s: expected (%s, %t), got (%s, %t)", tc.name, tc.expected, tc.tightened, tier, tightened)
		}
	}
}

func TestTierGuidanceTableComplete(t *testing.T) {
	tiers := []Tier{
		TierCompliant,
		TierF1Imminent,
		TierF2Fragile,
		TierF3Moderate,
		TierF4Comfortable,
		TierF5Safe,
		TierUnsalvageable,
	}

	for _, tier := range tiers {
		guidance, ok := tierGuidanceTable[tier]
		if !ok {
			t.Fatalf("missing guidance for tier %s", tier)
		}
		if guidance.ContactWindow == "" || guidance.Action == "" {
			t.Fatalf("incomplete guidance for tier %s", tier)
		}
	}
}

func TestTierLevels(t *testing.T) {
	if int(TierCompliant) != 0 || int(TierF1Imminent) != 1 || int(TierUnsalvageable) != 6 {
		t.Fatalf("tier levels out of order: %d %d %d", TierCompliant, TierF1Imminent, TierUnsalvageable)
	}
}
