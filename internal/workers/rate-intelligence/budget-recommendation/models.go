// internal/workers/rate-intelligence/budget-recommendation/models.go
package budgetrecommendation

import (
	"talent-matching-workers/internal/models"
	"talent-matching-workers/internal/rateintel"
)

type Input struct {
	Query              models.MarketRateQuery `json:"query"`
	ComplianceRequired bool                   `json:"complianceRequired"`
	EstimatedHours     float64                `json:"estimatedHours,omitempty"`
}

type Output struct {
	Economical        rateintel.BudgetTier     `json:"economical"`
	Competitive       rateintel.BudgetTier     `json:"competitive"`
	Premium           rateintel.BudgetTier     `json:"premium"`
	CompliancePremium float64                  `json:"compliancePremiumPct"`
	Confidence        float64                  `json:"confidence"`
	Notes             []string                 `json:"notes"`
	Market            *models.MarketRateResult `json:"market"`
}
