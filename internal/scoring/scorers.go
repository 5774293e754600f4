// internal/scoring/scorers.go
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"talent-matching-workers/internal/models"
)

// Result is the raw output of one scoring function.
type Result struct {
	Score   float64         `json:"score"`
	Factors []models.Factor `json:"factors"`
}

// Scorer evaluates the eight dimensions using one set of tuning constants.
// It has no mutable state and is safe for concurrent use.
type Scorer struct {
	tuning Tuning
}

func NewScorer(t Tuning) *Scorer {
	return &Scorer{tuning: t.WithDefaults()}
}

func (s *Scorer) Tuning() Tuning {
	return s.tuning
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func factor(name string, value float64, desc string) models.Factor {
	impact := models.ImpactNeutral
	switch {
	case value > 0:
		impact = models.ImpactPositive
	case value < 0:
		impact = models.ImpactNegative
	}
	return models.Factor{Name: name, Value: round2(value), Impact: impact, Description: desc}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func finish(score float64, factors []models.Factor) Result {
	if factors == nil {
		factors = []models.Factor{}
	}
	return Result{Score: clamp(score), Factors: factors}
}

// ScoreCompliance returns 0 when any required code is absent. Otherwise it
// starts at 100 and applies the preferred bonus, expiry and clearance
// penalties.
func (s *Scorer) ScoreCompliance(profile *models.FreelancerComplianceProfile, required, preferred []string, minClearance *models.ClearanceLevel) Result {
	var factors []models.Factor
	required = models.NormalizeCodes(required)
	preferred = models.NormalizeCodes(preferred)

	var missing []string
	for _, code := range required {
		if !profile.Has(code) {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		factors = append(factors, factor("Missing Compliance", -100, strings.Join(missing, ", ")))
		return finish(0, factors)
	}

	score := 100.0
	if len(required) > 0 {
		factors = append(factors, factor("Required Compliance", 0, fmt.Sprintf("%d of %d requirements met", len(required), len(required))))
	}

	bonus := 0.0
	for _, code := range preferred {
		if profile.Has(code) {
			bonus += s.tuning.PreferredBonus
		}
	}
	if bonus > 0 {
		bonus = math.Min(bonus, s.tuning.PreferredBonusCap)
		score += bonus
		factors = append(factors, factor("Preferred Compliance", bonus, ""))
	}

	for _, code := range required {
		if profile.IsExpiringSoon(code) {
			score -= s.tuning.ExpiringPenalty
			factors = append(factors, factor("Expiring Compliance", -s.tuning.ExpiringPenalty, code))
		}
	}

	if minClearance != nil && *minClearance != "" {
		if profile.MeetsClearance(minClearance) {
			factors = append(factors, factor("Clearance", 0, string(*minClearance)+" or higher held"))
		} else {
			score -= s.tuning.ClearanceGapPenalty
			factors = append(factors, factor("Clearance", -s.tuning.ClearanceGapPenalty, "below "+string(*minClearance)))
		}
	}

	return finish(score, factors)
}

// ScoreSkills compares skill sets case-insensitively.
func (s *Scorer) ScoreSkills(candidateSkills, required []string, endorsements map[string]int, related models.RelatedSkillsMap) Result {
	req := uniqueLower(required)
	if len(req) == 0 {
		return finish(0, []models.Factor{factor("No Required Skills", 0, "")})
	}

	have := make(map[string]bool, len(candidateSkills))
	for _, sk := range candidateSkills {
		have[strings.ToLower(strings.TrimSpace(sk))] = true
	}
	endorsed := make(map[string]int, len(endorsements))
	for sk, n := range endorsements {
		endorsed[strings.ToLower(strings.TrimSpace(sk))] += n
	}

	var factors []models.Factor
	var unmatched []string
	matched := 0
	endorsementBonus := 0.0
	for _, sk := range req {
		if have[sk] {
			matched++
			if n := endorsed[sk]; n > 0 {
				endorsementBonus += 2 * math.Log1p(float64(n))
			}
			continue
		}
		unmatched = append(unmatched, sk)
	}

	perSkill := 100 / float64(len(req))
	score := perSkill * float64(matched)
	factors = append(factors, factor("Skill Match", score, fmt.Sprintf("%d of %d required skills", matched, len(req))))

	if endorsementBonus > 0 {
		endorsementBonus = math.Min(endorsementBonus, s.tuning.EndorsementBonusCap)
		score += endorsementBonus
		factors = append(factors, factor("Endorsements", endorsementBonus, ""))
	}

	relatedCredit := 0.0
	var via []string
	for _, sk := range unmatched {
		best := 0.0
		bestName := ""
		for _, rel := range related[sk] {
			name := strings.ToLower(rel.Skill)
			if have[name] && rel.Strength > best {
				best = math.Min(rel.Strength, 1)
				bestName = name
			}
		}
		if best > 0 {
			relatedCredit += best * s.tuning.RelatedCreditFactor * perSkill
			via = append(via, sk+"~"+bestName)
		}
	}
	if relatedCredit > 0 {
		score += relatedCredit
		factors = append(factors, factor("Related Skills", relatedCredit, strings.Join(via, ", ")))
	}
	if len(unmatched) > 0 {
		factors = append(factors, factor("Missing Skills", -perSkill*float64(len(unmatched)), strings.Join(unmatched, ", ")))
	}

	return finish(score, factors)
}

var experienceTargets = map[models.ExperienceLevel]float64{
	models.ExperienceEntry:        1,
	models.ExperienceIntermediate: 4,
	models.ExperienceExpert:       8,
}

func (s *Scorer) ScoreExperience(years *float64, platformProjects int, level models.ExperienceLevel) Result {
	var factors []models.Factor
	platform := 0.0
	if platformProjects > 0 {
		platform = s.tuning.PlatformBonusCap * (1 - math.Exp(-float64(platformProjects)/10))
	}

	if years == nil {
		factors = append(factors, factor("Experience Unknown", 0, "years of experience not provided"))
		if platform > 0 {
			factors = append(factors, factor("Platform Projects", platform, ""))
		}
		return finish(math.Min(s.tuning.MissingDataCap, 40+platform), factors)
	}

	target, ok := experienceTargets[models.ExperienceLevel(strings.ToUpper(string(level)))]
	if !ok {
		target = experienceTargets[models.ExperienceIntermediate]
	}
	ratio := math.Min(math.Max(*years, 0)/target, 1)
	score := 40 + 50*ratio
	factors = append(factors, factor("Years Experience", 50*ratio, fmt.Sprintf("%.1f years against %.0f expected", *years, target)))
	if platform > 0 {
		score += platform
		factors = append(factors, factor("Platform Projects", platform, fmt.Sprintf("%d completed on platform", platformProjects)))
	}
	return finish(score, factors)
}

var tierBonus = map[models.VerificationTier]float64{
	models.TierBasic:    0,
	models.TierVerified: 5,
	models.TierPremium:  10,
}

func (s *Scorer) ScoreTrust(trust *float64, tier models.VerificationTier, minTrust *float64) Result {
	var factors []models.Factor
	bonus := tierBonus[models.VerificationTier(strings.ToUpper(string(tier)))]

	if trust == nil {
		factors = append(factors, factor("Trust Unknown", 0, "no trust score"))
		if bonus > 0 {
			factors = append(factors, factor("Verification Tier", bonus, string(tier)))
		}
		return finish(math.Min(s.tuning.MissingDataCap, 40+bonus), factors)
	}

	t := math.Max(0, math.Min(100, *trust))
	score := 0.9 * t
	factors = append(factors, factor("Trust Score", score, ""))
	if bonus > 0 {
		score += bonus
		factors = append(factors, factor("Verification Tier", bonus, string(tier)))
	}
	if minTrust != nil {
		if t >= *minTrust {
			score += 5
			factors = append(factors, factor("Trust Threshold", 5, fmt.Sprintf("meets minimum %.0f", *minTrust)))
		} else {
			score -= 15
			factors = append(factors, factor("Trust Threshold", -15, fmt.Sprintf("below minimum %.0f", *minTrust)))
		}
	}
	return finish(score, factors)
}

// ScoreRate scores a rate against the budget and, when available, the
// market snapshot for the skill.
func (s *Scorer) ScoreRate(rate, budgetMin, budgetMax *float64, market *models.MarketRate, skillLabel string) Result {
	var factors []models.Factor
	if rate == nil {
		factors = append(factors, factor("Rate Unknown", 0, "no hourly rate"))
		return finish(s.tuning.MissingDataCap, factors)
	}
	r := *rate

	var score float64
	switch {
	case budgetMin == nil && budgetMax == nil:
		score = s.tuning.NoBudgetRateScore
		factors = append(factors, factor("No Budget", 0, ""))
	case budgetMax != nil && r > *budgetMax:
		over := 1.0
		if *budgetMax > 0 {
			over = (r - *budgetMax) / *budgetMax
		}
		score = math.Max(0, 100-200*over)
		factors = append(factors, factor("Over Budget", score-100, fmt.Sprintf("%.0f%% above budget", over*100)))
	case budgetMin != nil && r < *budgetMin:
		score = s.tuning.BelowBudgetRateScore
		factors = append(factors, factor("Below Budget", 0, ""))
	default:
		score = 100
		factors = append(factors, factor("Within Budget", 0, ""))
	}

	if market != nil && market.Bands.Median > 0 {
		label := skillLabel
		if label == "" {
			label = "market"
		}
		if r < market.Bands.Median {
			bonus := math.Min(s.tuning.MarketValueBonusCap, (market.Bands.Median-r)/market.Bands.Median*20)
			score += bonus
			factors = append(factors, factor("Rate Percentile", bonus, "below "+label+" median"))
		} else if market.Bands.P90 > 0 && r > market.Bands.P90 {
			score -= 5
			factors = append(factors, factor("Rate Percentile", -5, "above "+label+" 90th percentile"))
		}
	}
	return finish(score, factors)
}

func (s *Scorer) ScoreAvailability(pattern *models.WorkPattern, asOf time.Time, requiredHours *float64, requesterTZ string, duration models.DurationCategory) Result {
	var factors []models.Factor
	if pattern == nil {
		factors = append(factors, factor("Availability Unknown", 0, "no work pattern"))
		return finish(s.tuning.MissingDataCap, factors)
	}

	maxProjects := pattern.MaxConcurrentProjects
	if maxProjects <= 0 {
		maxProjects = 3
	}
	remaining := maxProjects - pattern.CurrentActiveProjects

	var score float64
	switch {
	case remaining <= 0:
		score = 10
		factors = append(factors, factor("At Capacity", -30, fmt.Sprintf("%d of %d projects active", pattern.CurrentActiveProjects, maxProjects)))
	default:
		score = 40 + 50*float64(remaining)/float64(maxProjects)
		factors = append(factors, factor("Open Capacity", score-40, fmt.Sprintf("%d of %d slots free", remaining, maxProjects)))
		if remaining == 1 && maxProjects > 1 {
			score -= 10
			factors = append(factors, factor("Near Capacity", -10, ""))
		}
	}

	if requiredHours != nil && *requiredHours > 0 && pattern.WeeklyHoursAvailable < *requiredHours {
		short := (*requiredHours - pattern.WeeklyHoursAvailable) / *requiredHours
		penalty := math.Min(20, 20*short)
		score -= penalty
		factors = append(factors, factor("Hours Shortfall", -penalty, fmt.Sprintf("%.0f of %.0f hours", pattern.WeeklyHoursAvailable, *requiredHours)))
	}

	if requesterTZ != "" && pattern.Timezone != "" && strings.EqualFold(requesterTZ, pattern.Timezone) {
		score += s.tuning.TimezoneBonus
		factors = append(factors, factor("Timezone Match", s.tuning.TimezoneBonus, pattern.Timezone))
	}

	if pattern.AvailableFrom != nil && pattern.AvailableFrom.After(asOf) {
		days := math.Ceil(pattern.AvailableFrom.Sub(asOf).Hours() / 24)
		penalty := math.Min(20, days)
		score -= penalty
		factors = append(factors, factor("Start Delay", -penalty, fmt.Sprintf("available in %.0f days", days)))
		if duration == models.DurationShortTerm && days > 7 {
			score -= 10
			factors = append(factors, factor("Short Term Start", -10, ""))
		}
	}

	return finish(score, factors)
}

func (s *Scorer) ScoreSuccessHistory(metrics *models.SuccessMetrics) Result {
	if metrics == nil || metrics.TotalProjects <= 0 {
		return finish(s.tuning.NewFreelancerScore, []models.Factor{factor("New Freelancer", 0, "no completed project history")})
	}

	var factors []models.Factor
	completion := math.Min(1, float64(metrics.CompletedProjects)/float64(metrics.TotalProjects))
	rating := math.Max(0, math.Min(5, metrics.AvgRating))
	onTime := math.Max(0, math.Min(1, metrics.OnTimeDeliveryRate))

	score := 40*completion + 35*rating/5 + 25*onTime
	factors = append(factors,
		factor("Completion Rate", 40*completion, fmt.Sprintf("%.0f%%", completion*100)),
		factor("Average Rating", 35*rating/5, fmt.Sprintf("%.1f of 5", rating)),
		factor("On-Time Delivery", 25*onTime, fmt.Sprintf("%.0f%%", onTime*100)),
	)
	if metrics.RepeatClientRate > 0 {
		bonus := math.Min(10, 20*metrics.RepeatClientRate)
		score += bonus
		factors = append(factors, factor("Repeat Clients", bonus, ""))
	}
	if completion < 0.7 && score > s.tuning.LowCompletionCeiling {
		factors = append(factors, factor("Low Completion", s.tuning.LowCompletionCeiling-score, ""))
		score = s.tuning.LowCompletionCeiling
	}
	return finish(score, factors)
}

func (s *Scorer) ScoreResponsiveness(pattern *models.WorkPattern, asOf time.Time) Result {
	if pattern == nil || (pattern.AvgResponseTimeMinutes == nil && pattern.AvgFirstBidTimeHours == nil) {
		return finish(s.tuning.MissingDataCap, []models.Factor{factor("Responsiveness Unknown", 0, "")})
	}

	var factors []models.Factor
	var score float64
	response := -1.0
	if pattern.AvgResponseTimeMinutes != nil {
		response = 100 / (1 + math.Max(0, *pattern.AvgResponseTimeMinutes)/60)
		factors = append(factors, factor("Response Time", response, fmt.Sprintf("%.0f minutes average", *pattern.AvgResponseTimeMinutes)))
	}
	bid := -1.0
	if pattern.AvgFirstBidTimeHours != nil {
		bid = 100 / (1 + math.Max(0, *pattern.AvgFirstBidTimeHours)/24)
		factors = append(factors, factor("First Bid Time", bid, fmt.Sprintf("%.1f hours average", *pattern.AvgFirstBidTimeHours)))
	}
	switch {
	case response >= 0 && bid >= 0:
		score = 0.7*response + 0.3*bid
	case response >= 0:
		score = response
	default:
		score = bid
	}

	if pattern.LastActiveAt != nil {
		idle := asOf.Sub(*pattern.LastActiveAt).Hours() / 24
		if idle > s.tuning.StaleAfterDays {
			penalty := math.Min(s.tuning.StalePenaltyCap, math.Floor(idle-s.tuning.StaleAfterDays))
			score -= penalty
			factors = append(factors, factor("Inactive", -penalty, fmt.Sprintf("last active %.0f days ago", math.Floor(idle))))
		}
	}
	return finish(score, factors)
}

func uniqueLower(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
