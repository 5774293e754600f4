// Package scoring holds the eight deterministic sub-score functions, the
// weight aggregator and the explanation generator used by matching runs.
package scoring

import "time"

// Tuning collects the heuristic constants of the scorers. The neutral and
// cap values have no derivation beyond product judgement, so they are
// configurable rather than hard-coded.
type Tuning struct {
	MissingDataCap     float64 `mapstructure:"missing_data_cap" json:"missingDataCap"`
	NewFreelancerScore float64 `mapstructure:"new_freelancer_score" json:"newFreelancerScore"`

	PreferredBonus       float64 `mapstructure:"preferred_bonus" json:"preferredBonus"`
	PreferredBonusCap    float64 `mapstructure:"preferred_bonus_cap" json:"preferredBonusCap"`
	ExpiringPenalty      float64 `mapstructure:"expiring_penalty" json:"expiringPenalty"`
	ClearanceGapPenalty  float64 `mapstructure:"clearance_gap_penalty" json:"clearanceGapPenalty"`
	EndorsementBonusCap  float64 `mapstructure:"endorsement_bonus_cap" json:"endorsementBonusCap"`
	RelatedCreditFactor  float64 `mapstructure:"related_credit_factor" json:"relatedCreditFactor"`
	PlatformBonusCap     float64 `mapstructure:"platform_bonus_cap" json:"platformBonusCap"`
	NoBudgetRateScore    float64 `mapstructure:"no_budget_rate_score" json:"noBudgetRateScore"`
	BelowBudgetRateScore float64 `mapstructure:"below_budget_rate_score" json:"belowBudgetRateScore"`
	MarketValueBonusCap  float64 `mapstructure:"market_value_bonus_cap" json:"marketValueBonusCap"`
	TimezoneBonus        float64 `mapstructure:"timezone_bonus" json:"timezoneBonus"`
	LowCompletionCeiling float64 `mapstructure:"low_completion_ceiling" json:"lowCompletionCeiling"`
	StaleAfterDays       float64 `mapstructure:"stale_after_days" json:"staleAfterDays"`
	StalePenaltyCap      float64 `mapstructure:"stale_penalty_cap" json:"stalePenaltyCap"`

	ExpiringWindow time.Duration `mapstructure:"expiring_window" json:"expiringWindow"`
}

func DefaultTuning() Tuning {
	return Tuning{
		MissingDataCap:       50,
		NewFreelancerScore:   50,
		PreferredBonus:       5,
		PreferredBonusCap:    15,
		ExpiringPenalty:      10,
		ClearanceGapPenalty:  40,
		EndorsementBonusCap:  10,
		RelatedCreditFactor:  0.5,
		PlatformBonusCap:     10,
		NoBudgetRateScore:    75,
		BelowBudgetRateScore: 90,
		MarketValueBonusCap:  10,
		TimezoneBonus:        10,
		LowCompletionCeiling: 65,
		StaleAfterDays:       14,
		StalePenaltyCap:      30,
		ExpiringWindow:       30 * 24 * time.Hour,
	}
}

// WithDefaults fills zero fields from DefaultTuning so a partially
// configured Tuning still behaves.
func (t Tuning) WithDefaults() Tuning {
	d := DefaultTuning()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&t.MissingDataCap, d.MissingDataCap)
	fill(&t.NewFreelancerScore, d.NewFreelancerScore)
	fill(&t.PreferredBonus, d.PreferredBonus)
	fill(&t.PreferredBonusCap, d.PreferredBonusCap)
	fill(&t.ExpiringPenalty, d.ExpiringPenalty)
	fill(&t.ClearanceGapPenalty, d.ClearanceGapPenalty)
	fill(&t.EndorsementBonusCap, d.EndorsementBonusCap)
	fill(&t.RelatedCreditFactor, d.RelatedCreditFactor)
	fill(&t.PlatformBonusCap, d.PlatformBonusCap)
	fill(&t.NoBudgetRateScore, d.NoBudgetRateScore)
	fill(&t.BelowBudgetRateScore, d.BelowBudgetRateScore)
	fill(&t.MarketValueBonusCap, d.MarketValueBonusCap)
	fill(&t.TimezoneBonus, d.TimezoneBonus)
	fill(&t.LowCompletionCeiling, d.LowCompletionCeiling)
	fill(&t.StaleAfterDays, d.StaleAfterDays)
	fill(&t.StalePenaltyCap, d.StalePenaltyCap)
	if t.ExpiringWindow == 0 {
		t.ExpiringWindow = d.ExpiringWindow
	}
	return t
}
