// internal/rateintel/analysis.go
package rateintel

import (
	"context"
	"fmt"
	"math"

	"talent-matching-workers/internal/models"
)

// FactorParams describes the freelancer side of a rate factor analysis.
type FactorParams struct {
	Query              models.MarketRateQuery `json:"query"`
	YearsExperience    float64                `json:"yearsExperience"`
	AvgRating          float64                `json:"avgRating"`
	SkillMatch         float64                `json:"skillMatch"`
	ComplianceRequired bool                   `json:"complianceRequired"`
}

type RateFactors struct {
	Market         *models.MarketRateResult `json:"market"`
	BaseMedian     float64                  `json:"baseMedian"`
	AdjustedMedian float64                  `json:"adjustedMedian"`
	SuggestedMin   float64                  `json:"suggestedMin"`
	SuggestedMax   float64                  `json:"suggestedMax"`
	Factors        []models.Factor          `json:"factors"`
}

type BudgetParams struct {
	Query              models.MarketRateQuery `json:"query"`
	ComplianceRequired bool                   `json:"complianceRequired"`
	EstimatedHours     float64                `json:"estimatedHours,omitempty"`
}

type BudgetTier struct {
	HourlyRate float64 `json:"hourlyRate"`
	Total      float64 `json:"total,omitempty"`
	Percentile float64 `json:"percentile"`
}

type BudgetRecommendation struct {
	Market            *models.MarketRateResult `json:"market"`
	Economical        BudgetTier               `json:"economical"`
	Competitive       BudgetTier               `json:"competitive"`
	Premium           BudgetTier               `json:"premium"`
	CompliancePremium float64                  `json:"compliancePremiumPct"`
	Notes             []string                 `json:"notes"`
}

type BidParams struct {
	Query models.MarketRateQuery `json:"query"`
	Rate  float64                `json:"rate"`
}

type BidComparison struct {
	Market          *models.MarketRateResult `json:"market"`
	Rate            float64                  `json:"rate"`
	Position        models.MarketPosition    `json:"position"`
	Percentile      float64                  `json:"percentile"`
	DeltaFromMedian float64                  `json:"deltaFromMedian"`
	DeltaPct        float64                  `json:"deltaPct"`
	Recommendations []string                 `json:"recommendations"`
}

// AnalyzeRateFactors adjusts the market median for experience, rating, skill
// fit, compliance and demand, and suggests a rate range around it.
func (s *Supplier) AnalyzeRateFactors(ctx context.Context, p FactorParams) (*RateFactors, error) {
	market, err := s.GetMarketRate(ctx, p.Query)
	if err != nil {
		return nil, err
	}
	return AnalyzeFactors(market, p), nil
}

// AnalyzeFactors is the pure part of AnalyzeRateFactors.
func AnalyzeFactors(market *models.MarketRateResult, p FactorParams) *RateFactors {
	base := market.Bands.Median
	out := &RateFactors{Market: market, BaseMedian: base, Factors: []models.Factor{}}

	experience := math.Min(1+math.Max(0, p.YearsExperience)*0.05, 2)
	rating := 0.9 + math.Max(0, math.Min(5, p.AvgRating))/50
	skill := 0.8 + math.Max(0, math.Min(1, p.SkillMatch))*0.4
	compliance := 1.0
	if p.ComplianceRequired && market.CompliancePremium > 0 {
		compliance = 1 + market.CompliancePremium/100
	}
	demand := 1.0
	switch market.DemandLevel {
	case models.LevelHigh:
		demand = 1.1
	case models.LevelLow:
		demand = 0.95
	}

	for _, m := range []struct {
		name string
		mult float64
	}{
		{"Experience", experience},
		{"Rating", rating},
		{"Skill Match", skill},
		{"Compliance Premium", compliance},
		{"Demand", demand},
	} {
		out.Factors = append(out.Factors, multiplierFactor(m.name, m.mult))
	}

	adjusted := base * experience * rating * skill * compliance * demand
	out.AdjustedMedian = round2(adjusted)
	out.SuggestedMin = round2(adjusted * 0.7)
	out.SuggestedMax = round2(adjusted * 1.4)
	return out
}

func multiplierFactor(name string, mult float64) models.Factor {
	pct := round1((mult - 1) * 100)
	impact := models.ImpactNeutral
	switch {
	case pct > 0:
		impact = models.ImpactPositive
	case pct < 0:
		impact = models.ImpactNegative
	}
	return models.Factor{Name: name, Value: pct, Impact: impact, Description: fmt.Sprintf("x%.2f", mult)}
}

// BudgetRecommendation proposes economical, competitive and premium budget
// tiers from the market percentiles.
func (s *Supplier) BudgetRecommendation(ctx context.Context, p BudgetParams) (*BudgetRecommendation, error) {
	market, err := s.GetMarketRate(ctx, p.Query)
	if err != nil {
		return nil, err
	}
	return RecommendBudget(market, p), nil
}

func RecommendBudget(market *models.MarketRateResult, p BudgetParams) *BudgetRecommendation {
	mult := 1.0
	out := &BudgetRecommendation{Market: market, Notes: []string{}}
	if p.ComplianceRequired && market.CompliancePremium > 0 {
		mult = 1 + market.CompliancePremium/100
		out.CompliancePremium = market.CompliancePremium
		out.Notes = append(out.Notes, fmt.Sprintf("Includes %.1f%% premium for compliance-required work", market.CompliancePremium))
	}
	tier := func(rate, pct float64) BudgetTier {
		t := BudgetTier{HourlyRate: round2(rate * mult), Percentile: pct}
		if p.EstimatedHours > 0 {
			t.Total = round2(t.HourlyRate * p.EstimatedHours)
		}
		return t
	}
	out.Economical = tier(market.Bands.P25, 25)
	out.Competitive = tier(market.Bands.Median, 50)
	out.Premium = tier(market.Bands.P75, 75)

	if market.Source == SourceDefault {
		out.Notes = append(out.Notes, "Limited market data; recommendation based on platform defaults")
	} else if market.WideningLevel > 0 {
		out.Notes = append(out.Notes, "Based on a broader market segment")
	}
	switch market.DemandLevel {
	case models.LevelHigh:
		out.Notes = append(out.Notes, "High demand for this skill; competitive or premium budgets attract stronger candidates")
	case models.LevelLow:
		out.Notes = append(out.Notes, "Low demand for this skill; economical budgets are likely to receive bids")
	}
	if market.TrendDirection == models.TrendRising {
		out.Notes = append(out.Notes, "Rates are rising over the last 30 days")
	}
	return out
}

// BidComparison positions a proposed rate against the market.
func (s *Supplier) BidComparison(ctx context.Context, p BidParams) (*BidComparison, error) {
	if p.Rate <= 0 {
		return nil, fmt.Errorf("%w: rate must be positive", ErrInvalidQuery)
	}
	market, err := s.GetMarketRate(ctx, p.Query)
	if err != nil {
		return nil, err
	}
	return CompareBid(market, p.Rate), nil
}

func CompareBid(market *models.MarketRateResult, rate float64) *BidComparison {
	out := &BidComparison{
		Market:          market,
		Rate:            rate,
		Position:        Position(rate, market.Bands),
		Percentile:      Percentile(rate, market.Bands),
		DeltaFromMedian: round2(rate - market.Bands.Median),
		Recommendations: []string{},
	}
	if market.Bands.Median > 0 {
		out.DeltaPct = round1((rate - market.Bands.Median) / market.Bands.Median * 100)
	}
	switch out.Position {
	case models.PositionBelow:
		out.Recommendations = append(out.Recommendations, "Rate is below market median; there is room to charge more")
	case models.PositionAbove:
		out.Recommendations = append(out.Recommendations, "Rate is above market; make sure the proposal shows premium value")
	}
	if rate > market.Bands.P90 {
		out.Recommendations = append(out.Recommendations, "Rate exceeds the 90th percentile for this segment")
	}
	return out
}
