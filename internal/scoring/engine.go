// internal/scoring/engine.go
package scoring

import (
	"time"

	"talent-matching-workers/internal/models"
)

// Input bundles the per-run read-only data every candidate is scored against.
type Input struct {
	Criteria models.MatchingCriteria
	Weights  Weights
	Market   *models.MarketRate
	Related  models.RelatedSkillsMap
	AsOf     time.Time
}

// ScoreCandidate runs all eight scorers for one candidate and assembles the
// matched record.
func (s *Scorer) ScoreCandidate(in Input, c models.CandidateProfile, profile *models.FreelancerComplianceProfile, status models.ComplianceStatus) models.MatchedFreelancer {
	cr := in.Criteria
	results := map[models.Component]Result{
		models.ComponentCompliance:     s.ScoreCompliance(profile, cr.RequiredCompliance, cr.PreferredCompliance, cr.MinClearance),
		models.ComponentSkills:         s.ScoreSkills(c.Skills, cr.RequiredSkills, c.Endorsements, in.Related),
		models.ComponentExperience:     s.ScoreExperience(c.YearsExperience, c.PlatformProjectCount, cr.ExperienceLevel),
		models.ComponentTrust:          s.ScoreTrust(c.TrustScore, c.VerificationTier, cr.MinTrustScore),
		models.ComponentRate:           s.ScoreRate(c.HourlyRate, cr.BudgetMin, cr.BudgetMax, in.Market, cr.PrimarySkill()),
		models.ComponentAvailability:   s.ScoreAvailability(c.WorkPattern, in.AsOf, cr.RequiredHoursPerWeek, cr.RequesterTimezone, cr.DurationCategory),
		models.ComponentSuccessHistory: s.ScoreSuccessHistory(c.SuccessMetrics),
		models.ComponentResponsiveness: s.ScoreResponsiveness(c.WorkPattern, in.AsOf),
	}

	var scores models.ComponentScores
	for _, comp := range models.AllComponents {
		scores.Set(comp, BuildComponentScore(results[comp], in.Weights.Of(comp)))
	}

	ex := GenerateExplanations(scores, MatchContext{
		RequiredSkills: cr.RequiredSkills,
		BudgetMax:      cr.BudgetMax,
		HourlyRate:     c.HourlyRate,
		Expiring:       status.Expiring,
	})
	for _, section := range c.Degraded {
		ex.Warnings = append(ex.Warnings, "Partial profile data: "+section+" unavailable")
	}

	return models.MatchedFreelancer{
		Freelancer: models.FreelancerSummary{
			ID:               c.ID,
			DisplayName:      c.DisplayName,
			Headline:         c.Headline,
			Skills:           c.Skills,
			HourlyRate:       c.HourlyRate,
			TrustScore:       c.TrustScore,
			VerificationTier: c.VerificationTier,
			AvgRating:        c.AvgRating(),
		},
		OverallScore:     CalculateOverallScore(scores),
		Scores:           scores,
		Explanations:     ex.Explanations,
		Warnings:         ex.Warnings,
		Boosts:           ex.Boosts,
		ComplianceStatus: status,
	}
}
