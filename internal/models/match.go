// internal/models/match.go
package models

import "time"

type Component string

const (
	ComponentCompliance     Component = "compliance"
	ComponentSkills         Component = "skills"
	ComponentExperience     Component = "experience"
	ComponentTrust          Component = "trust"
	ComponentRate           Component = "rate"
	ComponentAvailability   Component = "availability"
	ComponentSuccessHistory Component = "successHistory"
	ComponentResponsiveness Component = "responsiveness"
)

// AllComponents lists the components in canonical order.
var AllComponents = []Component{
	ComponentCompliance,
	ComponentSkills,
	ComponentExperience,
	ComponentTrust,
	ComponentRate,
	ComponentAvailability,
	ComponentSuccessHistory,
	ComponentResponsiveness,
}

type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// Factor is a named contribution to a component score. Factors explain a
// score; they are never used to recompute it.
type Factor struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Impact      Impact  `json:"impact"`
	Description string  `json:"description,omitempty"`
}

type ComponentScore struct {
	Score    float64  `json:"score"`
	Weight   float64  `json:"weight"`
	Weighted float64  `json:"weighted"`
	Factors  []Factor `json:"factors"`
}

type ComponentScores struct {
	Compliance     ComponentScore `json:"compliance"`
	Skills         ComponentScore `json:"skills"`
	Experience     ComponentScore `json:"experience"`
	Trust          ComponentScore `json:"trust"`
	Rate           ComponentScore `json:"rate"`
	Availability   ComponentScore `json:"availability"`
	SuccessHistory ComponentScore `json:"successHistory"`
	Responsiveness ComponentScore `json:"responsiveness"`
}

func (c *ComponentScores) Get(name Component) ComponentScore {
	switch name {
	case ComponentCompliance:
		return c.Compliance
	case ComponentSkills:
		return c.Skills
	case ComponentExperience:
		return c.Experience
	case ComponentTrust:
		return c.Trust
	case ComponentRate:
		return c.Rate
	case ComponentAvailability:
		return c.Availability
	case ComponentSuccessHistory:
		return c.SuccessHistory
	case ComponentResponsiveness:
		return c.Responsiveness
	}
	return ComponentScore{}
}

func (c *ComponentScores) Set(name Component, score ComponentScore) {
	switch name {
	case ComponentCompliance:
		c.Compliance = score
	case ComponentSkills:
		c.Skills = score
	case ComponentExperience:
		c.Experience = score
	case ComponentTrust:
		c.Trust = score
	case ComponentRate:
		c.Rate = score
	case ComponentAvailability:
		c.Availability = score
	case ComponentSuccessHistory:
		c.SuccessHistory = score
	case ComponentResponsiveness:
		c.Responsiveness = score
	}
}

type Boost struct {
	Component Component `json:"component"`
	Label     string    `json:"label"`
	Score     float64   `json:"score"`
}

type FreelancerSummary struct {
	ID               string           `json:"id"`
	DisplayName      string           `json:"displayName"`
	Headline         string           `json:"headline,omitempty"`
	Skills           []string         `json:"skills"`
	HourlyRate       *float64         `json:"hourlyRate,omitempty"`
	TrustScore       *float64         `json:"trustScore,omitempty"`
	VerificationTier VerificationTier `json:"verificationTier,omitempty"`
	AvgRating        float64          `json:"avgRating"`
}

type MatchedFreelancer struct {
	Freelancer       FreelancerSummary `json:"freelancer"`
	OverallScore     float64           `json:"overallScore"`
	Scores           ComponentScores   `json:"scores"`
	Explanations     []string          `json:"explanations"`
	Warnings         []string          `json:"warnings"`
	Boosts           []Boost           `json:"boosts"`
	ComplianceStatus ComplianceStatus  `json:"complianceStatus"`
}

type MatchResult struct {
	RunID       string              `json:"runId"`
	Freelancers []MatchedFreelancer `json:"freelancers"`
	Total       int                 `json:"total"`
	Page        int                 `json:"page"`
	Limit       int                 `json:"limit"`
	Partial     bool                `json:"partial"`
	Scored      int                 `json:"scored"`
	Gated       int                 `json:"gated"`
}

// MatchRunEvent summarizes one matching run for downstream consumers.
type MatchRunEvent struct {
	RunID           string    `json:"runId"`
	ProjectID       string    `json:"projectId,omitempty"`
	Total           int       `json:"total"`
	Scored          int       `json:"scored"`
	Excluded        int       `json:"excluded"`
	Gated           int       `json:"gated"`
	Partial         bool      `json:"partial"`
	DurationMs      int64     `json:"durationMs"`
	TopCandidateIDs []string  `json:"topCandidateIds"`
	CompletedAt     time.Time `json:"completedAt"`
}
