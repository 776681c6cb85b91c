package main

import (
	"encoding/json"
	"time"
)

// Tier is the discrete fragility classification. The numeric order is the
// tier level (0-6); promotion during year-end tightening moves one step
// toward TierF1Imminent.
type Tier int

const (
	TierCompliant Tier = iota
	TierF1Imminent
	TierF2Fragile
	TierF3Moderate
	TierF4Comfortable
	TierF5Safe
	TierUnsalvageable
)

func (t Tier) String() string {
	switch t {
	case TierCompliant:
		return "COMPLIANT"
	case TierF1Imminent:
		return "F1_IMMINENT"
	case TierF2Fragile:
		return "F2_FRAGILE"
	case TierF3Moderate:
		return "F3_MODERATE"
	case TierF4Comfortable:
		return "F4_COMFORTABLE"
	case TierF5Safe:
		return "F5_SAFE"
	case TierUnsalvageable:
		return "T5_UNSALVAGEABLE"
	}
	return "UNKNOWN"
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Fixed contact window and recommended action per tier. Looked up, never
// computed.
type tierGuidance struct {
	ContactWindow string
	Action        string
}

var tierGuidanceTable = map[Tier]tierGuidance{
	TierCompliant:     {"none", "No outreach needed; adherence target already secured"},
	TierF1Imminent:    {"24 hours", "Call patient today to arrange an immediate refill"},
	TierF2Fragile:     {"48 hours", "Contact patient within two days to schedule the next refill"},
	TierF3Moderate:    {"1 week", "Reach out this week to confirm the refill plan"},
	TierF4Comfortable: {"2 weeks", "Queue a routine refill reminder"},
	TierF5Safe:        {"next routine touchpoint", "Monitor; no targeted outreach required"},
	TierUnsalvageable: {"next period planning", "Plan re-engagement for the next measurement period"},
}

func classify(cfg CalcConfig, adherence *AdherenceResult, refillsRemaining int, asOf time.Time) (Tier, float64, bool) {
	/*
	 * Evaluation order is load-bearing and must not be reordered:
	 *   1. pdcStatusQuo >= threshold          -> COMPLIANT, unconditionally
	 *   2. pdcPerfect < threshold             -> T5_UNSALVAGEABLE
	 *   3. delay budget = gapRemaining / refillsRemaining, mapped
	 *      <=2 -> F1, <=5 -> F2, <=10 -> F3, <=20 -> F4, else F5
	 *      (refillsRemaining <= 0: positive gap budget -> F5, else F1)
	 *   4. Year-end tightening: < 60 days to Dec 31 AND gapRemaining <= 5
	 *      promotes one step toward F1; COMPLIANT, T5, and F1 never move
	 */

	if adherence.PDCStatusQuo >= cfg.ComplianceThreshold {
		return TierCompliant, 0, false
	}

	if adherence.PDCPerfect < cfg.ComplianceThreshold {
		return TierUnsalvageable, 0, false
	}

	gapRemaining := adherence.GapDaysRemaining

	var tier Tier
	var budget float64

	if refillsRemaining <= 0 {
		// No refills left to spread the budget over: any positive budget
		// is effectively unbounded per refill, anything else is critical
		if gapRemaining > 0 {
			tier = TierF5Safe
		} else {
			tier = TierF1Imminent
		}
	} else {
		budget = float64(gapRemaining) / float64(refillsRemaining)
		switch {
		case budget <= cfg.DelayBudgetF1:
			tier = TierF1Imminent
		case budget <= cfg.DelayBudgetF2:
			tier = TierF2Fragile
		case budget <= cfg.DelayBudgetF3:
			tier = TierF3Moderate
		case budget <= cfg.DelayBudgetF4:
			tier = TierF4Comfortable
		default:
			tier = TierF5Safe
		}
	}

	// Year-end tightening
	daysToYearEnd := daysBetween(asOf, endOfYear(asOf.Year(), asOf.Location()))
	tier, tightened := tightenTier(cfg, tier, daysToYearEnd, gapRemaining)

	return tier, budget, tightened
}

// tightenTier promotes a tier one step toward F1 when little calendar
// time remains to recover compliance. COMPLIANT, T5_UNSALVAGEABLE, and
// F1_IMMINENT never move.
func tightenTier(cfg CalcConfig, tier Tier, daysToYearEnd, gapRemaining int) (Tier, bool) {
	if daysToYearEnd >= cfg.YearEndWindowDays || gapRemaining > cfg.TighteningGapMax {
		return tier, false
	}
	if tier < TierF2Fragile || tier > TierF5Safe {
		return tier, false
	}
	return tier - 1, true
}
