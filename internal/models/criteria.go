// internal/models/criteria.go
package models

import "time"

type ExperienceLevel string

const (
	ExperienceEntry        ExperienceLevel = "ENTRY"
	ExperienceIntermediate ExperienceLevel = "INTERMEDIATE"
	ExperienceExpert       ExperienceLevel = "EXPERT"
)

type DurationCategory string

const (
	DurationShortTerm  DurationCategory = "SHORT_TERM"
	DurationMediumTerm DurationCategory = "MEDIUM_TERM"
	DurationLongTerm   DurationCategory = "LONG_TERM"
)

type SortField string

const (
	SortByScore  SortField = "score"
	SortByRate   SortField = "rate"
	SortByRating SortField = "rating"
	SortByTrust  SortField = "trust"
)

// MatchingCriteria is the validated input of a matching run. The orchestrator
// treats it as read-only for the whole run.
type MatchingCriteria struct {
	ProjectID            string           `json:"projectId,omitempty"`
	RequiredSkills       []string         `json:"requiredSkills"`
	SkillCategory        string           `json:"skillCategory,omitempty"`
	RequiredCompliance   []string         `json:"requiredCompliance,omitempty"`
	PreferredCompliance  []string         `json:"preferredCompliance,omitempty"`
	MinClearance         *ClearanceLevel  `json:"minClearance,omitempty"`
	BudgetMin            *float64         `json:"budgetMin,omitempty"`
	BudgetMax            *float64         `json:"budgetMax,omitempty"`
	ExperienceLevel      ExperienceLevel  `json:"experienceLevel,omitempty"`
	MinTrustScore        *float64         `json:"minTrustScore,omitempty"`
	ExcludeUserIDs       []string         `json:"excludeUserIds,omitempty"`
	Region               string           `json:"region,omitempty"`
	RequesterTimezone    string           `json:"requesterTimezone,omitempty"`
	RequiredHoursPerWeek *float64         `json:"requiredHoursPerWeek,omitempty"`
	DurationCategory     DurationCategory `json:"durationCategory,omitempty"`
	AsOf                 *time.Time       `json:"asOf,omitempty"`
}

// PrimarySkill is the skill used to key market-rate lookups.
func (c MatchingCriteria) PrimarySkill() string {
	if len(c.RequiredSkills) == 0 {
		return ""
	}
	return c.RequiredSkills[0]
}

type MatchingOptions struct {
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
	SortBy  SortField          `json:"sortBy,omitempty"`
	Weights map[string]float64 `json:"weights,omitempty"`
	Timeout time.Duration      `json:"-"`
}
