// internal/scoring/explain.go
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"talent-matching-workers/internal/models"
)

const (
	HighScoreThreshold = 85.0
	LowScoreThreshold  = 45.0
	maxBoosts          = 2
)

var componentLabels = map[models.Component]string{
	models.ComponentCompliance:     "Compliance",
	models.ComponentSkills:         "Skills",
	models.ComponentExperience:     "Experience",
	models.ComponentTrust:          "Trust",
	models.ComponentRate:           "Rate",
	models.ComponentAvailability:   "Availability",
	models.ComponentSuccessHistory: "Track record",
	models.ComponentResponsiveness: "Responsiveness",
}

// MatchContext carries the criteria details that low-score warnings cite.
type MatchContext struct {
	RequiredSkills []string
	BudgetMax      *float64
	HourlyRate     *float64
	Expiring       []string
}

type Explanations struct {
	Explanations []string       `json:"explanations"`
	Warnings     []string       `json:"warnings"`
	Boosts       []models.Boost `json:"boosts"`
}

// GenerateExplanations turns component scores into explanations, warnings
// and boosts, ordered by component weight descending.
func GenerateExplanations(scores models.ComponentScores, mc MatchContext) Explanations {
	out := Explanations{
		Explanations: []string{},
		Warnings:     []string{},
		Boosts:       []models.Boost{},
	}

	order := make([]models.Component, len(models.AllComponents))
	copy(order, models.AllComponents)
	sort.SliceStable(order, func(i, j int) bool {
		return scores.Get(order[i]).Weight > scores.Get(order[j]).Weight
	})

	var high []models.Component
	for _, c := range order {
		cs := scores.Get(c)
		switch {
		case cs.Score >= HighScoreThreshold:
			out.Explanations = append(out.Explanations, explainHigh(c, cs))
			high = append(high, c)
		case cs.Score <= LowScoreThreshold:
			out.Warnings = append(out.Warnings, explainLow(c, cs, mc))
		}
	}

	sort.SliceStable(high, func(i, j int) bool {
		a, b := scores.Get(high[i]), scores.Get(high[j])
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Weight > b.Weight
	})
	for i := 0; i < len(high) && i < maxBoosts; i++ {
		out.Boosts = append(out.Boosts, models.Boost{
			Component: high[i],
			Label:     "Strong " + strings.ToLower(componentLabels[high[i]]),
			Score:     scores.Get(high[i]).Score,
		})
	}
	return out
}

func explainHigh(c models.Component, cs models.ComponentScore) string {
	switch c {
	case models.ComponentCompliance:
		return "Meets all required compliance and clearance requirements"
	case models.ComponentSkills:
		return "Strong match on required skills"
	case models.ComponentExperience:
		return "Experience level exceeds project expectations"
	case models.ComponentTrust:
		return "Highly trusted, verified freelancer"
	case models.ComponentRate:
		return "Rate fits the project budget"
	case models.ComponentAvailability:
		return "Has capacity to start promptly"
	case models.ComponentSuccessHistory:
		return "Excellent project completion and client ratings"
	case models.ComponentResponsiveness:
		return "Responds quickly to clients"
	}
	return fmt.Sprintf("%s score %.0f", componentLabels[c], cs.Score)
}

func explainLow(c models.Component, cs models.ComponentScore, mc MatchContext) string {
	switch c {
	case models.ComponentCompliance:
		if len(mc.Expiring) > 0 {
			return "Compliance expiring soon: " + strings.Join(mc.Expiring, ", ")
		}
		if f, ok := findFactor(cs, "Clearance"); ok && f.Impact == models.ImpactNegative {
			return "Clearance " + f.Description
		}
		return "Compliance requirements only partially met"
	case models.ComponentSkills:
		if f, ok := findFactor(cs, "Missing Skills"); ok {
			return "Missing required skills: " + f.Description
		}
		return "Limited overlap with required skills"
	case models.ComponentRate:
		if mc.HourlyRate != nil && mc.BudgetMax != nil && *mc.HourlyRate > *mc.BudgetMax {
			return fmt.Sprintf("Rate %.0f/hr exceeds budget of %.0f/hr", *mc.HourlyRate, *mc.BudgetMax)
		}
		if mc.HourlyRate == nil {
			return "No hourly rate on profile"
		}
		return "Rate is a weak fit for the budget"
	case models.ComponentAvailability:
		if _, ok := findFactor(cs, "At Capacity"); ok {
			return "Currently at project capacity"
		}
		return "Limited availability for this project"
	case models.ComponentResponsiveness:
		if f, ok := findFactor(cs, "Inactive"); ok {
			return "Inactive recently: " + f.Description
		}
		return "Slow to respond to clients"
	case models.ComponentTrust:
		return "Low trust score"
	case models.ComponentExperience:
		return "Less experience than the project expects"
	case models.ComponentSuccessHistory:
		return "Weak project completion history"
	}
	return fmt.Sprintf("%s score %.0f", componentLabels[c], cs.Score)
}

func findFactor(cs models.ComponentScore, name string) (models.Factor, bool) {
	for _, f := range cs.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return models.Factor{}, false
}
