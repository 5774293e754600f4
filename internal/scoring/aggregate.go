// internal/scoring/aggregate.go
package scoring

import (
	"math"

	"talent-matching-workers/internal/models"
)

// DefaultWeights are the documented component weights. They sum to 1.
var DefaultWeights = map[models.Component]float64{
	models.ComponentCompliance:     0.20,
	models.ComponentSkills:         0.25,
	models.ComponentExperience:     0.12,
	models.ComponentTrust:          0.15,
	models.ComponentRate:           0.10,
	models.ComponentAvailability:   0.08,
	models.ComponentSuccessHistory: 0.07,
	models.ComponentResponsiveness: 0.03,
}

// Weights is a normalized weight set keyed by component.
type Weights map[models.Component]float64

func (w Weights) Of(c models.Component) float64 {
	return w[c]
}

// NormalizeWeights merges partial over DefaultWeights, clamps negatives to
// zero and divides by the sum. Unknown keys are ignored. If every merged
// weight is zero the defaults are used instead.
func NormalizeWeights(partial map[string]float64) Weights {
	merged := make(Weights, len(models.AllComponents))
	for _, c := range models.AllComponents {
		merged[c] = DefaultWeights[c]
	}
	for k, v := range partial {
		c := models.Component(k)
		if _, ok := DefaultWeights[c]; !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		merged[c] = v
	}

	sum := 0.0
	for _, v := range merged {
		sum += v
	}
	if sum <= 0 {
		for _, c := range models.AllComponents {
			merged[c] = DefaultWeights[c]
		}
		sum = 1
	}
	for c, v := range merged {
		merged[c] = v / sum
	}
	return merged
}

func BuildComponentScore(r Result, weight float64) models.ComponentScore {
	score := clamp(r.Score)
	factors := r.Factors
	if factors == nil {
		factors = []models.Factor{}
	}
	return models.ComponentScore{
		Score:    score,
		Weight:   weight,
		Weighted: score * weight,
		Factors:  factors,
	}
}

// CalculateOverallScore sums the weighted component scores.
func CalculateOverallScore(scores models.ComponentScores) float64 {
	total := 0.0
	for _, c := range models.AllComponents {
		total += scores.Get(c).Weighted
	}
	return clamp(total)
}
