package main

// tierBaseScore looks up the configured base score for a tier. COMPLIANT
// and T5_UNSALVAGEABLE carry no score; neither drives outreach priority.
func tierBaseScore(cfg CalcConfig, tier Tier) int {
	switch tier {
	case TierF1Imminent:
		return cfg.ScoreF1
	case TierF2Fragile:
		return cfg.ScoreF2
	case TierF3Moderate:
		return cfg.ScoreF3
	case TierF4Comfortable:
		return cfg.ScoreF4
	case TierF5Safe:
		return cfg.ScoreF5
	}
	return 0
}

// scorePriority converts a tier plus contextual flags into the numeric
// priority score and its additive bonus breakdown. The total is capped at
// the maximum defined combination.
func scorePriority(cfg CalcConfig, tier Tier, flags FragilityFlags, finalQuarter bool) (int, PriorityBonuses) {
	if tier == TierCompliant || tier == TierUnsalvageable {
		return 0, PriorityBonuses{}
	}

	bonuses := PriorityBonuses{Base: tierBaseScore(cfg, tier)}

	if flags.IsOutOfSupply {
		bonuses.OutOfSupply = cfg.BonusOutOfSupply
	}
	if finalQuarter {
		bonuses.YearEnd = cfg.BonusYearEnd
	}
	if flags.IsMultiMeasure {
		bonuses.MultiMeasure = cfg.BonusMultiMeasure
	}
	if flags.IsNewPatient {
		bonuses.NewPatient = cfg.BonusNewPatient
	}

	score := bonuses.Base + bonuses.OutOfSupply + bonuses.YearEnd + bonuses.MultiMeasure + bonuses.NewPatient
	if score > cfg.MaxPriorityScore {
		score = cfg.MaxPriorityScore
	}

	return score, bonuses
}

func urgencyLevel(cfg CalcConfig, score int) string {
	switch {
	case score >= cfg.UrgencyExtreme:
		return "EXTREME"
	case score >= cfg.UrgencyHigh:
		return "HIGH"
	case score >= cfg.UrgencyModerate:
		return "MODERATE"
	default:
		return "LOW"
	}
}
