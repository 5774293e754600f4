// internal/workers/rate-intelligence/get-market-rate/models.go
package getmarketrate

import (
	"talent-matching-workers/internal/models"
)

type Input struct {
	Query   models.MarketRateQuery `json:"query"`
	Factors *Factors               `json:"factors,omitempty"`
}

// Factors asks for a rate adjusted to one freelancer's profile.
type Factors struct {
	YearsExperience    float64 `json:"yearsExperience"`
	AvgRating          float64 `json:"avgRating"`
	SkillMatch         float64 `json:"skillMatch"`
	ComplianceRequired bool    `json:"complianceRequired"`
}

type Output struct {
	Market         *models.MarketRateResult `json:"market"`
	AdjustedMedian *float64                 `json:"adjustedMedian,omitempty"`
	SuggestedMin   *float64                 `json:"suggestedMin,omitempty"`
	SuggestedMax   *float64                 `json:"suggestedMax,omitempty"`
	Factors        []models.Factor          `json:"factors,omitempty"`
}
