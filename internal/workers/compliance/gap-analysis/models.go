// internal/workers/compliance/gap-analysis/models.go
package gapanalysis

import (
	"time"

	"talent-matching-workers/internal/compliance"
	"talent-matching-workers/internal/models"
)

type Input struct {
	CandidateID        string                 `json:"candidateId"`
	RequiredCompliance []string               `json:"requiredCompliance,omitempty"`
	MinClearance       *models.ClearanceLevel `json:"minClearance,omitempty"`
	AsOf               *time.Time             `json:"asOf,omitempty"`
}

type Output struct {
	CandidateID        string           `json:"candidateId"`
	Ready              bool             `json:"ready"`
	Gaps               []compliance.Gap `json:"gaps"`
	BlockingGaps       int              `json:"blockingGaps"`
	ReadinessPercent   float64          `json:"readinessPercent"`
	SequentialDays     int              `json:"sequentialDays"`
	ParallelDays       int              `json:"parallelDays"`
	EstimatedTotalDays int              `json:"estimatedTotalDays"`
	EstimatedTotalCost float64          `json:"estimatedTotalCost"`
	ExpiringRenewals   []string         `json:"expiringRenewals"`
	EstimatedReadyAt   *time.Time       `json:"estimatedReadyAt,omitempty"`
	AnalyzedAt         time.Time        `json:"analyzedAt"`
}
