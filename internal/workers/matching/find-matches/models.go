// internal/workers/matching/find-matches/models.go
package findmatches

import "talent-matching-workers/internal/models"

type Input struct {
	Criteria models.MatchingCriteria `json:"criteria"`
	Options  Options                 `json:"options"`
}

type Options struct {
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
	SortBy    models.SortField   `json:"sortBy,omitempty"`
	Weights   map[string]float64 `json:"weights,omitempty"`
	TimeoutMs int                `json:"timeoutMs,omitempty"`
}

type Output struct {
	RunID       string                     `json:"runId"`
	Freelancers []models.MatchedFreelancer `json:"freelancers"`
	Total       int                        `json:"total"`
	Page        int                        `json:"page"`
	Limit       int                        `json:"limit"`
	Partial     bool                       `json:"partial"`
	Scored      int                        `json:"scored"`
	Gated       int                        `json:"gated"`
}
