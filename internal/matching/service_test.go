// internal/matching/service_test.go
package matching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func tp(t time.Time) *time.Time { return &t }

func candidate(id string, rate float64, compliance ...string) models.CandidateProfile {
	c := models.CandidateProfile{
		ID:                   id,
		DisplayName:          "Freelancer " + id,
		Skills:               []string{"Go", "PostgreSQL"},
		HourlyRate:           f64(rate),
		YearsExperience:      f64(6),
		PlatformProjectCount: 10,
		TrustScore:           f64(80),
		VerificationTier:     models.TierVerified,
		WorkPattern: &models.WorkPattern{
			Timezone:               "UTC",
			MaxConcurrentProjects:  3,
			CurrentActiveProjects:  1,
			WeeklyHoursAvailable:   40,
			AvgResponseTimeMinutes: f64(30),
			LastActiveAt:           tp(testNow.Add(-24 * time.Hour)),
		},
		SuccessMetrics: &models.SuccessMetrics{
			TotalProjects:      10,
			CompletedProjects:  9,
			AvgRating:          4.6,
			OnTimeDeliveryRate: 0.9,
			RepeatClientRate:   0.4,
		},
	}
	for _, code := range compliance {
		c.ComplianceRecords = append(c.ComplianceRecords, models.ComplianceRecord{
			Type:   code,
			Status: models.VerificationVerified,
		})
	}
	return c
}

func baseCriteria() models.MatchingCriteria {
	asOf := testNow
	return models.MatchingCriteria{
		ProjectID:      "proj-1",
		RequiredSkills: []string{"Go"},
		AsOf:           &asOf,
	}
}

func newTestService(store CandidateStore, opts ...Option) *Service {
	cfg := Config{
		PoolSize: 4,
		Timeout:  5 * time.Second,
		Retry:    RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewService(store, cfg, logger.NewNoOpLogger(), opts...)
}

func ids(matches []models.MatchedFreelancer) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Freelancer.ID)
	}
	return out
}

type flakyStore struct {
	*MemoryStore
	mu       sync.Mutex
	failures int
}

func (f *flakyStore) ListCandidates(ctx context.Context, filter models.CandidateFilter) (*models.CandidateBatch, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return nil, errors.New("connection reset by peer")
	}
	f.mu.Unlock()
	return f.MemoryStore.ListCandidates(ctx, filter)
}

// blockingCache stalls profile lookups for the listed candidates until the
// run context expires.
type blockingCache struct {
	slow map[string]bool
}

func (b *blockingCache) Get(ctx context.Context, candidateID string, asOf time.Time) (*models.FreelancerComplianceProfile, error) {
	if b.slow[candidateID] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return nil, nil
}

func (b *blockingCache) Set(ctx context.Context, profile *models.FreelancerComplianceProfile) error {
	return nil
}

func (b *blockingCache) Invalidate(ctx context.Context, candidateIDs ...string) error {
	return nil
}

type fakeRates struct {
	mu      sync.Mutex
	queries []models.MarketRateQuery
	result  *models.MarketRateResult
	err     error
}

func (f *fakeRates) GetMarketRate(ctx context.Context, q models.MarketRateQuery) (*models.MarketRateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.result, f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.MatchRunEvent
	err    error
}

func (f *fakePublisher) PublishMatchRun(ctx context.Context, event models.MatchRunEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

// ==========================
// FindMatches
// ==========================

func TestFindMatches_ComplianceGate(t *testing.T) {
	store := NewMemoryStore(
		candidate("a", 50),
		candidate("b", 50, "HIPAA"),
		candidate("c", 50, "SOC2"),
	)
	svc := newTestService(store)

	cr := baseCriteria()
	cr.RequiredCompliance = []string{"hipaa"}

	res, err := svc.FindMatches(context.Background(), cr, models.MatchingOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 2, res.Gated)
	assert.Equal(t, []string{"b"}, ids(res.Freelancers))
	assert.True(t, res.Freelancers[0].ComplianceStatus.AllRequirementsMet)
	assert.Equal(t, []string{"HIPAA"}, res.Freelancers[0].ComplianceStatus.Met)
	assert.False(t, res.Partial)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, DefaultLimit, res.Limit)
	assert.NotEmpty(t, res.RunID)
}

func TestFindMatches_ClearanceGate(t *testing.T) {
	cleared := candidate("cleared", 60)
	cleared.Clearances = []models.ClearanceRecord{{Level: models.ClearanceTopSecret}}
	lower := candidate("lower", 60)
	lower.Clearances = []models.ClearanceRecord{{Level: models.ClearanceConfidential}}

	svc := newTestService(NewMemoryStore(cleared, lower, candidate("none", 60)))

	cr := baseCriteria()
	secret := models.ClearanceSecret
	cr.MinClearance = &secret

	res, err := svc.FindMatches(context.Background(), cr, models.MatchingOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"cleared"}, ids(res.Freelancers))
	assert.Equal(t, 2, res.Gated)
}

func TestFindMatches_ResponsivenessOrdering(t *testing.T) {
	fast := candidate("fast", 50)
	fast.WorkPattern.AvgResponseTimeMinutes = f64(15)
	slow := candidate("slow", 50)
	slow.WorkPattern.AvgResponseTimeMinutes = f64(180)

	svc := newTestService(NewMemoryStore(slow, fast))
	res, err := svc.FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{})
	require.NoError(t, err)

	require.Len(t, res.Freelancers, 2)
	assert.Equal(t, []string{"fast", "slow"}, ids(res.Freelancers))
	assert.InDelta(t, 80, res.Freelancers[0].Scores.Responsiveness.Score, 1e-9)
	assert.InDelta(t, 25, res.Freelancers[1].Scores.Responsiveness.Score, 1e-9)
	assert.Greater(t, res.Freelancers[0].OverallScore, res.Freelancers[1].OverallScore)
}

func TestFindMatches_Idempotent(t *testing.T) {
	store := NewMemoryStore(
		candidate("a", 45, "HIPAA"),
		candidate("b", 70, "HIPAA"),
		candidate("c", 55, "HIPAA", "SOC2"),
		candidate("d", 90),
	)
	svc := newTestService(store)

	cr := baseCriteria()
	cr.RequiredCompliance = []string{"HIPAA"}
	cr.PreferredCompliance = []string{"SOC2"}
	cr.BudgetMax = f64(80)
	opts := models.MatchingOptions{Weights: map[string]float64{"rate": 0.3}}

	first, err := svc.FindMatches(context.Background(), cr, opts)
	require.NoError(t, err)
	second, err := svc.FindMatches(context.Background(), cr, opts)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Freelancers, second.Freelancers)
	assert.Equal(t, first.Total, second.Total)
}

func TestFindMatches_Exclusions(t *testing.T) {
	svc := newTestService(NewMemoryStore(candidate("a", 50), candidate("b", 50), candidate("c", 50)))

	cr := baseCriteria()
	cr.ExcludeUserIDs = []string{"b"}

	res, err := svc.FindMatches(context.Background(), cr, models.MatchingOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, ids(res.Freelancers))
}

func TestFindMatches_PageOutOfRange(t *testing.T) {
	svc := newTestService(NewMemoryStore(candidate("a", 50), candidate("b", 50), candidate("c", 50)))

	res, err := svc.FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.NotNil(t, res.Freelancers)
	assert.Empty(t, res.Freelancers)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 5, res.Page)
	assert.Equal(t, 2, res.Limit)
}

func TestFindMatches_EmptyPool(t *testing.T) {
	svc := newTestService(NewMemoryStore())

	res, err := svc.FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Freelancers)
}

func TestFindMatches_PartialOnTimeout(t *testing.T) {
	store := NewMemoryStore(candidate("a", 50), candidate("slow", 50), candidate("b", 50))
	cache := &blockingCache{slow: map[string]bool{"slow": true}}
	svc := newTestService(store, WithProfileCache(cache))

	res, err := svc.FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	assert.True(t, res.Partial)
	assert.ElementsMatch(t, []string{"a", "b"}, ids(res.Freelancers))
	assert.Equal(t, 2, res.Total)
}

func TestFindMatches_StoreUnavailable(t *testing.T) {
	store := NewMemoryStore(candidate("a", 50))
	store.FailWith(errors.New("dial tcp: connection refused"))
	svc := newTestService(store)

	res, err := svc.FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{})
	require.Error(t, err)
	assert.Nil(t, res)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeCandidateStoreUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 3, store.Calls())
}

func TestFindMatches_RetriesTransientFailure(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(candidate("a", 50)), failures: 2}
	svc := newTestService(store)

	res, err := svc.FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(res.Freelancers))
}

func TestFindMatches_SkipsUnreadableCandidates(t *testing.T) {
	store := NewMemoryStore(candidate("a", 50), candidate("b", 50))
	store.AddFailure("broken", errors.New("invalid trust score"))
	svc := newTestService(store)

	res, err := svc.FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.NotContains(t, ids(res.Freelancers), "broken")
}

func TestFindMatches_DegradedSectionWarning(t *testing.T) {
	c := candidate("a", 50)
	c.WorkPattern = nil
	c.Degraded = []string{SectionWorkPattern}
	svc := newTestService(NewMemoryStore(c))

	res, err := svc.FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{})
	require.NoError(t, err)
	require.Len(t, res.Freelancers, 1)
	assert.Contains(t, res.Freelancers[0].Warnings, "Partial profile data: work pattern unavailable")
}

func TestFindMatches_MarketRates(t *testing.T) {
	t.Run("market snapshot is requested once per run", func(t *testing.T) {
		rates := &fakeRates{result: &models.MarketRateResult{
			Bands:      models.PercentileBands{P10: 30, P25: 40, Median: 50, P75: 70, P90: 90},
			SampleSize: 120,
			Confidence: 1,
		}}
		svc := newTestService(NewMemoryStore(candidate("a", 40), candidate("b", 95)), WithMarketRates(rates))

		cr := baseCriteria()
		cr.SkillCategory = "Backend"
		cr.ExperienceLevel = models.ExperienceExpert
		res, err := svc.FindMatches(context.Background(), cr, models.MatchingOptions{})
		require.NoError(t, err)

		require.Len(t, rates.queries, 1)
		assert.Equal(t, "Go", rates.queries[0].PrimarySkill)
		assert.Equal(t, "EXPERT", rates.queries[0].ExperienceLevel)
		assert.Equal(t, "a", res.Freelancers[0].Freelancer.ID)
	})

	t.Run("rate failure does not fail the run", func(t *testing.T) {
		rates := &fakeRates{err: errors.New("RATE_DATA_UNAVAILABLE")}
		svc := newTestService(NewMemoryStore(candidate("a", 40)), WithMarketRates(rates))

		res, err := svc.FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
	})
}

func TestFindMatches_RelatedSkills(t *testing.T) {
	c := candidate("a", 50)
	c.Skills = []string{"Rust"}
	graph := NewStaticSkillGraph(models.RelatedSkillsMap{
		"Go": {{Skill: "Rust", Strength: 0.6, RelationshipType: "SIMILAR"}},
	})

	without, err := newTestService(NewMemoryStore(c)).FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{})
	require.NoError(t, err)
	with, err := newTestService(NewMemoryStore(c), WithSkillGraph(graph)).FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{})
	require.NoError(t, err)

	assert.Greater(t, with.Freelancers[0].Scores.Skills.Score, without.Freelancers[0].Scores.Skills.Score)
}

func TestFindMatches_PublishesRunEvent(t *testing.T) {
	pub := &fakePublisher{err: errors.New("sns throttled")}
	svc := newTestService(NewMemoryStore(candidate("a", 50, "HIPAA"), candidate("b", 50), candidate("skip", 50, "HIPAA")), WithPublisher(pub))

	cr := baseCriteria()
	cr.RequiredCompliance = []string{"HIPAA"}
	cr.ExcludeUserIDs = []string{"skip"}
	res, err := svc.FindMatches(context.Background(), cr, models.MatchingOptions{})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, res.RunID, ev.RunID)
	assert.Equal(t, "proj-1", ev.ProjectID)
	assert.Equal(t, 1, ev.Gated)
	assert.Equal(t, 1, ev.Excluded)
	assert.Equal(t, res.Gated, ev.Gated)
	assert.Equal(t, []string{"a"}, ev.TopCandidateIDs)
}

type countingRecorder struct {
	scored []int
}

func (r *countingRecorder) RecordCandidatesScored(ctx context.Context, n int) {
	r.scored = append(r.scored, n)
}

func TestFindMatches_RecordsScoredCount(t *testing.T) {
	rec := &countingRecorder{}
	svc := newTestService(NewMemoryStore(candidate("a", 50, "HIPAA"), candidate("b", 50), candidate("c", 60, "HIPAA")), WithRecorder(rec))

	cr := baseCriteria()
	cr.RequiredCompliance = []string{"HIPAA"}
	_, err := svc.FindMatches(context.Background(), cr, models.MatchingOptions{})
	require.NoError(t, err)

	assert.Equal(t, []int{2}, rec.scored)
}

func TestFindMatches_RecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	svc := newTestService(NewMemoryStore(candidate("a", 50)), WithTracer(provider.Tracer("test")))

	_, err := svc.FindMatches(context.Background(), baseCriteria(), models.MatchingOptions{})
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "matching.FindMatches", spans[0].Name())
}

// ==========================
// Sorting and Pagination
// ==========================

func match(id string, score float64, rate *float64, rating, trust float64) models.MatchedFreelancer {
	return models.MatchedFreelancer{
		Freelancer: models.FreelancerSummary{
			ID:         id,
			HourlyRate: rate,
			AvgRating:  rating,
			TrustScore: f64(trust),
		},
		OverallScore: score,
	}
}

func TestSortMatches(t *testing.T) {
	tests := []struct {
		name     string
		sortBy   models.SortField
		input    []models.MatchedFreelancer
		expected []string
	}{
		{
			name:   "score desc with id tiebreak ignoring rate",
			sortBy: models.SortByScore,
			input: []models.MatchedFreelancer{
				match("b", 80, f64(40), 4, 70),
				match("z", 90, f64(99), 4, 70),
				match("a", 80, f64(50), 4, 70),
			},
			expected: []string{"z", "a", "b"},
		},
		{
			name:   "rate asc with nil last and id tiebreak",
			sortBy: models.SortByRate,
			input: []models.MatchedFreelancer{
				match("c", 70, f64(40), 4, 70),
				match("b", 70, nil, 4, 70),
				match("a", 70, f64(40), 4, 70),
				match("d", 70, f64(30), 4, 70),
			},
			expected: []string{"d", "a", "c", "b"},
		},
		{
			name:   "rate tie ignores score",
			sortBy: models.SortByRate,
			input: []models.MatchedFreelancer{
				match("b", 90, f64(40), 4, 70),
				match("a", 60, f64(40), 4, 70),
			},
			expected: []string{"a", "b"},
		},
		{
			name:   "rating tie ignores score and trust",
			sortBy: models.SortByRating,
			input: []models.MatchedFreelancer{
				match("b", 95, f64(20), 4.5, 99),
				match("a", 40, f64(80), 4.5, 10),
			},
			expected: []string{"a", "b"},
		},
		{
			name:   "trust tie ignores score",
			sortBy: models.SortByTrust,
			input: []models.MatchedFreelancer{
				match("b", 95, f64(50), 4, 80),
				match("a", 40, f64(50), 4, 80),
			},
			expected: []string{"a", "b"},
		},
		{
			name:   "rating desc",
			sortBy: models.SortByRating,
			input: []models.MatchedFreelancer{
				match("a", 90, f64(50), 3.9, 70),
				match("b", 60, f64(50), 4.9, 70),
			},
			expected: []string{"b", "a"},
		},
		{
			name:   "trust desc",
			sortBy: models.SortByTrust,
			input: []models.MatchedFreelancer{
				match("a", 90, f64(50), 4, 50),
				match("b", 60, f64(50), 4, 95),
			},
			expected: []string{"b", "a"},
		},
		{
			name:   "full tie falls back to id",
			sortBy: "",
			input: []models.MatchedFreelancer{
				match("m", 70, f64(40), 4, 70),
				match("k", 70, f64(40), 4, 70),
			},
			expected: []string{"k", "m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SortMatches(tt.input, tt.sortBy)
			assert.Equal(t, tt.expected, ids(tt.input))
		})
	}
}

func TestPaginate_CoversEveryItemOnce(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i + 1
	}

	for _, limit := range []int{1, 7, 10, 33, 100} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			var seen []int
			for page := 1; ; page++ {
				out, _, _ := Paginate(items, page, limit)
				if len(out) == 0 {
					break
				}
				assert.LessOrEqual(t, len(out), limit)
				seen = append(seen, out...)
			}
			assert.Equal(t, items, seen)
		})
	}
}

func TestPaginate_Normalization(t *testing.T) {
	items := make([]int, 250)

	tests := []struct {
		name          string
		page, limit   int
		expectedLen   int
		expectedPage  int
		expectedLimit int
	}{
		{"defaults", 0, 0, DefaultLimit, 1, DefaultLimit},
		{"limit capped", 1, 500, MaxLimit, 1, MaxLimit},
		{"negative page", -3, 10, 10, 1, 10},
		{"last partial page", 3, 100, 50, 3, 100},
		{"past the end", 4, 100, 0, 4, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, page, limit := Paginate(items, tt.page, tt.limit)
			assert.Len(t, out, tt.expectedLen)
			assert.Equal(t, tt.expectedPage, page)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}
}

func TestCandidateCompliance(t *testing.T) {
	store := NewMemoryStore(candidate("a", 50, "HIPAA"))
	svc := newTestService(store)

	c, profile, err := svc.CandidateCompliance(context.Background(), "a", testNow)
	require.NoError(t, err)
	assert.Equal(t, "a", c.ID)
	assert.True(t, profile.ComplianceTypes["HIPAA"])
	assert.Equal(t, testNow, profile.BuiltAt)

	_, _, err = svc.CandidateCompliance(context.Background(), "missing", testNow)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeCandidateNotFound, stdErr.Code)

	store.FailWith(errors.New("connection refused"))
	_, _, err = svc.CandidateCompliance(context.Background(), "a", testNow)
	stdErr, ok = apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeCandidateStoreUnavailable, stdErr.Code)
}
