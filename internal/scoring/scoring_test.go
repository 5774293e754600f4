// internal/scoring/scoring_test.go
package scoring

import (
	"testing"
	"time"

	"talent-matching-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func newTestScorer() *Scorer {
	return NewScorer(DefaultTuning())
}

func complianceProfile(codes ...string) *models.FreelancerComplianceProfile {
	p := &models.FreelancerComplianceProfile{
		ComplianceTypes: map[string]bool{},
		ClearanceLevels: map[models.ClearanceLevel]bool{},
		ExpiringSoon:    map[string]time.Time{},
	}
	for _, c := range codes {
		p.ComplianceTypes[models.NormalizeCode(c)] = true
	}
	return p
}

func sumWeights(w Weights) float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// ==========================
// Weights
// ==========================

func TestNormalizeWeights(t *testing.T) {
	tests := []struct {
		name    string
		partial map[string]float64
		check   func(t *testing.T, w Weights)
	}{
		{
			name:    "nil map yields defaults",
			partial: nil,
			check: func(t *testing.T, w Weights) {
				for c, v := range DefaultWeights {
					assert.InDelta(t, v, w[c], 1e-9)
				}
			},
		},
		{
			name:    "ratios of supplied weights preserved",
			partial: map[string]float64{"skills": 2, "trust": 1},
			check: func(t *testing.T, w Weights) {
				assert.InDelta(t, 2.0, w[models.ComponentSkills]/w[models.ComponentTrust], 1e-9)
				assert.InDelta(t, 0.20/0.12, w[models.ComponentCompliance]/w[models.ComponentExperience], 1e-9)
			},
		},
		{
			name:    "negative weight clamps to zero",
			partial: map[string]float64{"rate": -3},
			check: func(t *testing.T, w Weights) {
				assert.Equal(t, 0.0, w[models.ComponentRate])
			},
		},
		{
			name: "all zero falls back to defaults",
			partial: map[string]float64{
				"compliance": 0, "skills": 0, "experience": 0, "trust": 0,
				"rate": 0, "availability": 0, "successHistory": 0, "responsiveness": 0,
			},
			check: func(t *testing.T, w Weights) {
				assert.InDelta(t, 0.25, w[models.ComponentSkills], 1e-9)
			},
		},
		{
			name:    "unknown keys ignored",
			partial: map[string]float64{"vibes": 10},
			check: func(t *testing.T, w Weights) {
				assert.Len(t, w, len(models.AllComponents))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NormalizeWeights(tt.partial)
			assert.InDelta(t, 1.0, sumWeights(w), 1e-6)
			for _, v := range w {
				assert.GreaterOrEqual(t, v, 0.0)
			}
			tt.check(t, w)
		})
	}
}

func TestBuildComponentScore_ClampsAndWeights(t *testing.T) {
	for _, raw := range []float64{-20, 0, 42.5, 100, 180} {
		cs := BuildComponentScore(Result{Score: raw}, 0.15)
		assert.GreaterOrEqual(t, cs.Score, 0.0)
		assert.LessOrEqual(t, cs.Score, 100.0)
		assert.InDelta(t, cs.Score*0.15, cs.Weighted, 1e-9)
		assert.NotNil(t, cs.Factors)
	}
}

func TestCalculateOverallScore(t *testing.T) {
	w := NormalizeWeights(nil)
	var scores models.ComponentScores
	for _, c := range models.AllComponents {
		scores.Set(c, BuildComponentScore(Result{Score: 80}, w.Of(c)))
	}
	assert.InDelta(t, 80.0, CalculateOverallScore(scores), 1e-9)
}

// ==========================
// Scorers
// ==========================

func TestScoreCompliance(t *testing.T) {
	s := newTestScorer()
	secret := models.ClearanceSecret

	t.Run("missing required code scores zero regardless of preferred", func(t *testing.T) {
		p := complianceProfile("HIPAA", "SOC2", "ISO27001")
		r := s.ScoreCompliance(p, []string{"FEDRAMP"}, []string{"SOC2", "ISO27001"}, nil)
		assert.Equal(t, 0.0, r.Score)
		assert.Equal(t, "Missing Compliance", r.Factors[0].Name)
	})

	t.Run("all met with preferred bonus clamps at 100", func(t *testing.T) {
		p := complianceProfile("HIPAA", "SOC2")
		r := s.ScoreCompliance(p, []string{"hipaa"}, []string{"soc-2", "SOC2"}, nil)
		assert.Equal(t, 100.0, r.Score)
	})

	t.Run("expiring requirement penalized", func(t *testing.T) {
		p := complianceProfile("HIPAA")
		p.ExpiringSoon["HIPAA"] = testNow.Add(10 * 24 * time.Hour)
		r := s.ScoreCompliance(p, []string{"HIPAA"}, nil, nil)
		assert.Equal(t, 90.0, r.Score)
	})

	t.Run("clearance below minimum penalized", func(t *testing.T) {
		p := complianceProfile("HIPAA")
		p.ClearanceLevels[models.ClearanceConfidential] = true
		r := s.ScoreCompliance(p, []string{"HIPAA"}, nil, &secret)
		assert.Equal(t, 60.0, r.Score)
	})

	t.Run("higher clearance satisfies minimum", func(t *testing.T) {
		p := complianceProfile()
		p.ClearanceLevels[models.ClearanceTopSecret] = true
		r := s.ScoreCompliance(p, nil, nil, &secret)
		assert.Equal(t, 100.0, r.Score)
	})

	t.Run("nil profile with no requirements", func(t *testing.T) {
		r := s.ScoreCompliance(nil, nil, nil, nil)
		assert.Equal(t, 100.0, r.Score)
	})

	t.Run("repeated code counts once", func(t *testing.T) {
		p := complianceProfile("HIPAA")
		p.ExpiringSoon["HIPAA"] = testNow.Add(10 * 24 * time.Hour)
		single := s.ScoreCompliance(p, []string{"HIPAA"}, nil, nil)
		repeated := s.ScoreCompliance(p, []string{"HIPAA", "hipaa", " Hipaa "}, nil, nil)
		assert.Equal(t, single.Score, repeated.Score)
		assert.Equal(t, 90.0, repeated.Score)
		assert.Equal(t, "1 of 1 requirements met", repeated.Factors[0].Description)
	})

	t.Run("blank code is ignored", func(t *testing.T) {
		p := complianceProfile("HIPAA")
		r := s.ScoreCompliance(p, []string{"HIPAA", "", "  "}, []string{""}, nil)
		assert.Equal(t, 100.0, r.Score)
	})

	t.Run("repeated preferred code earns one bonus", func(t *testing.T) {
		p := complianceProfile("HIPAA", "SOC2")
		p.ExpiringSoon["HIPAA"] = testNow.Add(10 * 24 * time.Hour)
		once := s.ScoreCompliance(p, []string{"HIPAA"}, []string{"SOC2"}, nil)
		twice := s.ScoreCompliance(p, []string{"HIPAA"}, []string{"SOC2", "soc2"}, nil)
		assert.Equal(t, once.Score, twice.Score)
	})
}

func TestScoreSkills(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		name      string
		candidate []string
		required  []string
		endorse   map[string]int
		related   models.RelatedSkillsMap
		expected  float64
	}{
		{"identical sets case-insensitive", []string{"Go", "PostgreSQL"}, []string{"go", "postgresql"}, nil, nil, 100},
		{"disjoint sets", []string{"Java"}, []string{"Go", "Rust"}, nil, nil, 0},
		{"no required skills", []string{"Go"}, nil, nil, nil, 0},
		{"half match", []string{"Go"}, []string{"Go", "Rust"}, nil, nil, 50},
		{
			"related skill partial credit",
			[]string{"Go", "C++"},
			[]string{"Go", "Rust"},
			nil,
			models.RelatedSkillsMap{"rust": {{Skill: "C++", Strength: 0.8, RelationshipType: "SIMILAR"}}},
			70,
		},
		{"endorsement bonus capped", []string{"Go"}, []string{"Go", "Rust"}, map[string]int{"go": 1000}, nil, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := s.ScoreSkills(tt.candidate, tt.required, tt.endorse, tt.related)
			assert.InDelta(t, tt.expected, r.Score, 1e-9)
		})
	}
}

func TestScoreSkills_RelatedSkillsFactor(t *testing.T) {
	s := newTestScorer()
	r := s.ScoreSkills([]string{"Kotlin"}, []string{"Java"}, nil, models.RelatedSkillsMap{
		"java": {{Skill: "kotlin", Strength: 0.6}},
	})
	var names []string
	for _, f := range r.Factors {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "Related Skills")
	assert.InDelta(t, 30.0, r.Score, 1e-9)
}

func TestScoreExperience(t *testing.T) {
	s := newTestScorer()

	assert.LessOrEqual(t, s.ScoreExperience(nil, 50, models.ExperienceExpert).Score, 50.0)
	assert.InDelta(t, 90.0, s.ScoreExperience(f64(8), 0, models.ExperienceExpert).Score, 1e-9)
	assert.InDelta(t, 65.0, s.ScoreExperience(f64(2), 0, models.ExperienceIntermediate).Score, 1e-9)
	// unknown level uses the intermediate curve
	assert.InDelta(t, 90.0, s.ScoreExperience(f64(4), 0, "GURU").Score, 1e-9)
	assert.Greater(t,
		s.ScoreExperience(f64(1), 20, models.ExperienceEntry).Score,
		s.ScoreExperience(f64(1), 0, models.ExperienceEntry).Score)
}

func TestScoreTrust(t *testing.T) {
	s := newTestScorer()

	assert.InDelta(t, 82.0, s.ScoreTrust(f64(80), models.TierVerified, f64(70)).Score, 1e-9)
	assert.InDelta(t, 39.0, s.ScoreTrust(f64(60), models.TierBasic, f64(70)).Score, 1e-9)
	assert.Equal(t, 100.0, s.ScoreTrust(f64(100), models.TierPremium, f64(50)).Score)
	assert.LessOrEqual(t, s.ScoreTrust(nil, models.TierPremium, nil).Score, 50.0)
}

func TestScoreRate(t *testing.T) {
	s := newTestScorer()
	market := &models.MarketRate{Bands: models.PercentileBands{P10: 30, P25: 40, Median: 50, P75: 70, P90: 90}}

	tests := []struct {
		name     string
		rate     *float64
		min, max *float64
		market   *models.MarketRate
		expected float64
	}{
		{"nil rate", nil, f64(40), f64(80), market, 50},
		{"no budget", f64(60), nil, nil, nil, 75},
		{"within budget", f64(60), f64(40), f64(80), nil, 100},
		{"below budget min", f64(30), f64(40), f64(80), nil, 90},
		{"ten percent over", f64(88), f64(40), f64(80), nil, 80},
		{"far over floors at zero", f64(200), nil, f64(80), nil, 0},
		{"below market median bonus", f64(40), nil, nil, market, 79},
		{"above p90 penalty", f64(95), nil, nil, market, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := s.ScoreRate(tt.rate, tt.min, tt.max, tt.market, "golang")
			assert.InDelta(t, tt.expected, r.Score, 1e-9)
		})
	}
}

func TestScoreAvailability(t *testing.T) {
	s := newTestScorer()

	t.Run("nil pattern capped", func(t *testing.T) {
		assert.LessOrEqual(t, s.ScoreAvailability(nil, testNow, nil, "", "").Score, 50.0)
	})

	t.Run("at capacity", func(t *testing.T) {
		p := &models.WorkPattern{MaxConcurrentProjects: 3, CurrentActiveProjects: 3}
		r := s.ScoreAvailability(p, testNow, nil, "", "")
		assert.Equal(t, 10.0, r.Score)
		assert.Equal(t, "At Capacity", r.Factors[0].Name)
	})

	t.Run("near capacity", func(t *testing.T) {
		p := &models.WorkPattern{MaxConcurrentProjects: 4, CurrentActiveProjects: 3}
		assert.InDelta(t, 42.5, s.ScoreAvailability(p, testNow, nil, "", "").Score, 1e-9)
	})

	t.Run("timezone match bonus", func(t *testing.T) {
		p := &models.WorkPattern{MaxConcurrentProjects: 2, Timezone: "America/New_York"}
		assert.Equal(t, 100.0, s.ScoreAvailability(p, testNow, nil, "america/new_york", "").Score)
	})

	t.Run("short term start delay", func(t *testing.T) {
		start := testNow.Add(10 * 24 * time.Hour)
		p := &models.WorkPattern{MaxConcurrentProjects: 2, AvailableFrom: &start}
		assert.InDelta(t, 70.0, s.ScoreAvailability(p, testNow, nil, "", models.DurationShortTerm).Score, 1e-9)
	})

	t.Run("hours shortfall", func(t *testing.T) {
		p := &models.WorkPattern{MaxConcurrentProjects: 2, WeeklyHoursAvailable: 20}
		assert.InDelta(t, 80.0, s.ScoreAvailability(p, testNow, f64(40), "", "").Score, 1e-9)
	})
}

func TestScoreSuccessHistory(t *testing.T) {
	s := newTestScorer()

	assert.Equal(t, 50.0, s.ScoreSuccessHistory(nil).Score)
	assert.Equal(t, 50.0, s.ScoreSuccessHistory(&models.SuccessMetrics{TotalProjects: 0, AvgRating: 5}).Score)

	strong := &models.SuccessMetrics{TotalProjects: 10, CompletedProjects: 10, AvgRating: 4.5, OnTimeDeliveryRate: 0.9, RepeatClientRate: 0.3}
	assert.InDelta(t, 40+31.5+22.5+6, s.ScoreSuccessHistory(strong).Score, 1e-9)

	weak := &models.SuccessMetrics{TotalProjects: 10, CompletedProjects: 5, AvgRating: 5, OnTimeDeliveryRate: 1}
	r := s.ScoreSuccessHistory(weak)
	assert.Less(t, r.Score, 70.0)
	assert.Equal(t, 65.0, r.Score)
}

func TestScoreResponsiveness(t *testing.T) {
	s := newTestScorer()

	fast := s.ScoreResponsiveness(&models.WorkPattern{AvgResponseTimeMinutes: f64(15)}, testNow)
	slow := s.ScoreResponsiveness(&models.WorkPattern{AvgResponseTimeMinutes: f64(180)}, testNow)
	assert.InDelta(t, 80.0, fast.Score, 1e-9)
	assert.InDelta(t, 25.0, slow.Score, 1e-9)
	assert.Greater(t, fast.Score, slow.Score)

	assert.LessOrEqual(t, s.ScoreResponsiveness(nil, testNow).Score, 50.0)

	lastActive := testNow.Add(-24 * 24 * time.Hour)
	stale := s.ScoreResponsiveness(&models.WorkPattern{AvgResponseTimeMinutes: f64(15), LastActiveAt: &lastActive}, testNow)
	assert.InDelta(t, 70.0, stale.Score, 1e-9)
}

func TestScorers_AlwaysInRange(t *testing.T) {
	s := newTestScorer()
	for _, r := range []Result{
		s.ScoreCompliance(nil, []string{"X"}, nil, nil),
		s.ScoreSkills(nil, nil, nil, nil),
		s.ScoreExperience(f64(-5), -3, ""),
		s.ScoreTrust(f64(400), models.TierPremium, f64(0)),
		s.ScoreRate(f64(-10), f64(50), f64(0), nil, ""),
		s.ScoreAvailability(&models.WorkPattern{CurrentActiveProjects: 99}, testNow, f64(80), "", models.DurationShortTerm),
		s.ScoreSuccessHistory(&models.SuccessMetrics{TotalProjects: 1, CompletedProjects: 9, AvgRating: 9, OnTimeDeliveryRate: 3, RepeatClientRate: 4}),
		s.ScoreResponsiveness(&models.WorkPattern{AvgFirstBidTimeHours: f64(-1)}, testNow),
	} {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 100.0)
	}
}

// ==========================
// Explanations
// ==========================

func TestGenerateExplanations(t *testing.T) {
	w := NormalizeWeights(nil)
	raw := map[models.Component]float64{
		models.ComponentCompliance:     100,
		models.ComponentSkills:         95,
		models.ComponentExperience:     90,
		models.ComponentTrust:          60,
		models.ComponentRate:           20,
		models.ComponentAvailability:   10,
		models.ComponentSuccessHistory: 50,
		models.ComponentResponsiveness: 70,
	}
	var scores models.ComponentScores
	for c, v := range raw {
		scores.Set(c, BuildComponentScore(Result{Score: v}, w.Of(c)))
	}
	scores.Availability.Factors = []models.Factor{{Name: "At Capacity", Value: -30, Impact: models.ImpactNegative}}

	ex := GenerateExplanations(scores, MatchContext{BudgetMax: f64(50), HourlyRate: f64(90)})

	require.Len(t, ex.Explanations, 3)
	assert.Equal(t, "Strong match on required skills", ex.Explanations[0])
	require.Len(t, ex.Boosts, 2)
	assert.Equal(t, models.ComponentCompliance, ex.Boosts[0].Component)
	assert.Equal(t, models.ComponentSkills, ex.Boosts[1].Component)
	require.Len(t, ex.Warnings, 2)
	assert.Equal(t, "Rate 90/hr exceeds budget of 50/hr", ex.Warnings[0])
	assert.Equal(t, "Currently at project capacity", ex.Warnings[1])
}
