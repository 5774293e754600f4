// internal/matching/service.go
package matching

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	apperrors "talent-matching-workers/internal/common/errors"
	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/common/metrics"
	"talent-matching-workers/internal/compliance"
	"talent-matching-workers/internal/models"
	"talent-matching-workers/internal/scoring"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 3,
	BaseDelay:  200 * time.Millisecond,
	MaxDelay:   2 * time.Second,
}

type Config struct {
	PoolSize       int            `mapstructure:"pool_size"`
	MaxCandidates  int            `mapstructure:"max_candidates"`
	Timeout        time.Duration  `mapstructure:"timeout"`
	ExpiringWindow time.Duration  `mapstructure:"expiring_window"`
	Retry          RetryConfig    `mapstructure:"retry"`
	Tuning         scoring.Tuning `mapstructure:"tuning"`
}

func (c Config) withDefaults() Config {
	if c.PoolSize <= 0 {
		c.PoolSize = runtime.GOMAXPROCS(0)
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.ExpiringWindow <= 0 {
		c.ExpiringWindow = compliance.DefaultExpiringWindow
	}
	if c.Retry.MaxRetries < 0 {
		c.Retry.MaxRetries = 0
	}
	if c.Retry.BaseDelay <= 0 {
		c.Retry.BaseDelay = DefaultRetryConfig.BaseDelay
	}
	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = DefaultRetryConfig.MaxDelay
	}
	c.Tuning = c.Tuning.WithDefaults()
	return c
}

// Service runs matching: fetch, gate, score, rank, paginate.
type Service struct {
	store     CandidateStore
	skills    SkillGraph
	rates     MarketRateSource
	profiles  ProfileCache
	publisher RunPublisher
	recorder  RunRecorder
	scorer    *scoring.Scorer
	config    Config
	logger    logger.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Service)

func WithSkillGraph(g SkillGraph) Option        { return func(s *Service) { s.skills = g } }
func WithMarketRates(r MarketRateSource) Option { return func(s *Service) { s.rates = r } }
func WithProfileCache(c ProfileCache) Option    { return func(s *Service) { s.profiles = c } }
func WithPublisher(p RunPublisher) Option       { return func(s *Service) { s.publisher = p } }
func WithTracer(t trace.Tracer) Option          { return func(s *Service) { s.tracer = t } }
func WithRecorder(r RunRecorder) Option         { return func(s *Service) { s.recorder = r } }
func WithClock(now func() time.Time) Option     { return func(s *Service) { s.now = now } }

func NewService(store CandidateStore, cfg Config, log logger.Logger, opts ...Option) *Service {
	cfg = cfg.withDefaults()
	s := &Service{
		store:  store,
		scorer: scoring.NewScorer(cfg.Tuning),
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "matching"}),
		tracer: otel.Tracer("talent-matching-workers/matching"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Config() Config {
	return s.config
}

type outcome int

const (
	outcomeUnfinished outcome = iota
	outcomeGated
	outcomeScored
)

type slot struct {
	outcome outcome
	match   models.MatchedFreelancer
}

// FindMatches ranks the candidate pool against the criteria. Candidates that
// fail the compliance gate are dropped before scoring. When the run timeout
// expires the candidates scored so far are returned with Partial set.
func (s *Service) FindMatches(ctx context.Context, criteria models.MatchingCriteria, opts models.MatchingOptions) (*models.MatchResult, error) {
	start := s.now()
	runID := uuid.NewString()
	log := s.logger.WithFields(map[string]interface{}{"runId": runID})

	ctx, span := s.tracer.Start(ctx, "matching.FindMatches", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("project.id", criteria.ProjectID),
		attribute.Int("criteria.required_skills", len(criteria.RequiredSkills)),
		attribute.Int("criteria.required_compliance", len(criteria.RequiredCompliance)),
	))
	defer span.End()

	asOf := start
	if criteria.AsOf != nil {
		asOf = *criteria.AsOf
	}
	weights := scoring.NormalizeWeights(opts.Weights)

	batch, err := s.fetchCandidates(ctx, criteria)
	if err != nil {
		metrics.MatchRuns.WithLabelValues(metrics.OutcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "candidate fetch failed")
		log.Error("Candidate pool unavailable", map[string]interface{}{"error": err.Error()})
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewCandidateStoreTimeoutError(err)
		}
		return nil, apperrors.NewCandidateStoreUnavailableError(err)
	}

	for _, f := range batch.Failures {
		log.Warn("Skipping candidate with unreadable profile", map[string]interface{}{
			"candidateId": f.CandidateID,
			"error":       errString(f.Err),
		})
	}
	metrics.MatchCandidates.WithLabelValues(metrics.StageFailed).Add(float64(len(batch.Failures)))

	pool := excludeCandidates(batch.Profiles, criteria.ExcludeUserIDs)
	metrics.MatchCandidates.WithLabelValues(metrics.StageFetched).Add(float64(len(pool)))
	for _, c := range pool {
		if len(c.Degraded) > 0 {
			metrics.MatchCandidates.WithLabelValues(metrics.StageDegraded).Inc()
		}
	}

	in := scoring.Input{
		Criteria: criteria,
		Weights:  weights,
		Market:   s.marketSnapshot(ctx, criteria, log),
		Related:  s.relatedSkills(ctx, criteria, log),
		AsOf:     asOf,
	}

	timeout := s.config.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slots := s.scorePool(runCtx, in, pool)

	if err := ctx.Err(); err != nil {
		metrics.MatchRuns.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	matches := make([]models.MatchedFreelancer, 0, len(slots))
	gated, unfinished := 0, 0
	for _, sl := range slots {
		switch sl.outcome {
		case outcomeScored:
			matches = append(matches, sl.match)
		case outcomeGated:
			gated++
		default:
			unfinished++
		}
	}
	partial := unfinished > 0
	metrics.MatchCandidates.WithLabelValues(metrics.StageGated).Add(float64(gated))
	metrics.MatchCandidates.WithLabelValues(metrics.StageScored).Add(float64(len(matches)))
	if s.recorder != nil {
		s.recorder.RecordCandidatesScored(ctx, len(matches))
	}

	SortMatches(matches, opts.SortBy)
	page, pageNum, limit := Paginate(matches, opts.Page, opts.Limit)

	result := &models.MatchResult{
		RunID:       runID,
		Freelancers: page,
		Total:       len(matches),
		Page:        pageNum,
		Limit:       limit,
		Partial:     partial,
		Scored:      len(matches),
		Gated:       gated,
	}

	elapsed := s.now().Sub(start)
	outcomeLabel := metrics.OutcomeComplete
	if partial {
		outcomeLabel = metrics.OutcomePartial
		log.Warn("Matching run timed out, returning partial result", map[string]interface{}{
			"unfinished": unfinished,
			"timeout":    timeout.String(),
		})
	}
	metrics.MatchRuns.WithLabelValues(outcomeLabel).Inc()
	metrics.MatchRunDuration.Observe(elapsed.Seconds())
	span.SetAttributes(
		attribute.Int("result.total", result.Total),
		attribute.Int("result.gated", gated),
		attribute.Bool("result.partial", partial),
	)

	log.Info("Matching run complete", map[string]interface{}{
		"pool":       len(pool),
		"gated":      gated,
		"scored":     len(matches),
		"partial":    partial,
		"durationMs": elapsed.Milliseconds(),
	})

	s.publish(ctx, criteria, result, gated, elapsed, log)
	return result, nil
}

// scorePool gates and scores every candidate on a bounded pool. Each goroutine
// writes only its own slot.
func (s *Service) scorePool(ctx context.Context, in scoring.Input, pool []models.CandidateProfile) []slot {
	slots := make([]slot, len(pool))

	var g errgroup.Group
	g.SetLimit(s.config.PoolSize)
	for i := range pool {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			c := pool[i]
			profile := s.complianceProfile(ctx, c, in.AsOf)
			status := compliance.Evaluate(profile, in.Criteria.RequiredCompliance, in.Criteria.MinClearance)
			if !status.AllRequirementsMet {
				slots[i].outcome = outcomeGated
				return nil
			}
			match := s.scorer.ScoreCandidate(in, c, profile, status)
			if ctx.Err() != nil {
				return nil
			}
			slots[i] = slot{outcome: outcomeScored, match: match}
			return nil
		})
	}
	_ = g.Wait()
	return slots
}

func (s *Service) complianceProfile(ctx context.Context, c models.CandidateProfile, asOf time.Time) *models.FreelancerComplianceProfile {
	if s.profiles != nil {
		cached, err := s.profiles.Get(ctx, c.ID, asOf)
		if err != nil && ctx.Err() == nil {
			s.logger.Debug("Profile cache read failed", map[string]interface{}{
				"candidateId": c.ID,
				"error":       err.Error(),
			})
		}
		if cached != nil {
			window := s.config.ExpiringWindow
			if window <= 0 {
				window = compliance.DefaultExpiringWindow
			}
			if cached.SourceDigest == compliance.SourceDigest(c) && cached.Horizon.Sub(cached.BuiltAt) == window {
				return cached
			}
			// Records or the expiring window changed since the profile was cached.
			if err := s.profiles.Invalidate(ctx, c.ID); err != nil && ctx.Err() == nil {
				s.logger.Debug("Profile cache invalidate failed", map[string]interface{}{
					"candidateId": c.ID,
					"error":       err.Error(),
				})
			}
		}
	}

	profile := compliance.BuildProfile(c, asOf, s.config.ExpiringWindow)
	if s.profiles != nil && ctx.Err() == nil {
		if err := s.profiles.Set(ctx, profile); err != nil {
			s.logger.Debug("Profile cache write failed", map[string]interface{}{
				"candidateId": c.ID,
				"error":       err.Error(),
			})
		}
	}
	return profile
}

// CandidateCompliance loads one candidate and derives its compliance profile
// as of asOf through the profile cache.
func (s *Service) CandidateCompliance(ctx context.Context, candidateID string, asOf time.Time) (*models.CandidateProfile, *models.FreelancerComplianceProfile, error) {
	c, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		switch {
		case errors.Is(err, ErrCandidateNotFound):
			return nil, nil, apperrors.NewCandidateNotFoundError(candidateID)
		case errors.Is(err, context.DeadlineExceeded):
			return nil, nil, apperrors.NewCandidateStoreTimeoutError(err)
		default:
			return nil, nil, apperrors.NewCandidateStoreUnavailableError(err)
		}
	}
	return c, s.complianceProfile(ctx, *c, asOf), nil
}

// fetchCandidates performs the bulk fetch with exponential backoff.
func (s *Service) fetchCandidates(ctx context.Context, criteria models.MatchingCriteria) (*models.CandidateBatch, error) {
	filter := models.CandidateFilter{
		ExcludeIDs: criteria.ExcludeUserIDs,
		Limit:      s.config.MaxCandidates,
	}
	cfg := s.config.Retry

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		batch, err := s.store.ListCandidates(ctx, filter)
		if err == nil {
			if batch == nil {
				batch = &models.CandidateBatch{}
			}
			return batch, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == cfg.MaxRetries {
			break
		}

		delay := cfg.BaseDelay * time.Duration(1<<attempt)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		s.logger.Warn("Candidate fetch failed, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay.String(),
			"error":   err.Error(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("candidate fetch cancelled after %d attempts: %w", attempt+1, ctx.Err())
		}
	}
	return nil, fmt.Errorf("candidate fetch failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

func (s *Service) marketSnapshot(ctx context.Context, criteria models.MatchingCriteria, log logger.Logger) *models.MarketRate {
	if s.rates == nil || (criteria.PrimarySkill() == "" && criteria.SkillCategory == "") {
		return nil
	}
	res, err := s.rates.GetMarketRate(ctx, models.MarketRateQuery{
		SkillCategory:   criteria.SkillCategory,
		PrimarySkill:    criteria.PrimarySkill(),
		ExperienceLevel: string(criteria.ExperienceLevel),
		Region:          criteria.Region,
	})
	if err != nil {
		log.Warn("Market rate unavailable, scoring rates against budget only", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return res.Snapshot()
}

func (s *Service) relatedSkills(ctx context.Context, criteria models.MatchingCriteria, log logger.Logger) models.RelatedSkillsMap {
	if s.skills == nil || len(criteria.RequiredSkills) == 0 {
		return nil
	}
	related, err := s.skills.RelatedSkills(ctx, criteria.RequiredSkills)
	if err != nil {
		log.Warn("Skill graph unavailable, no related-skill credit", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return related
}

func (s *Service) publish(ctx context.Context, criteria models.MatchingCriteria, result *models.MatchResult, gated int, elapsed time.Duration, log logger.Logger) {
	if s.publisher == nil {
		return
	}
	top := make([]string, 0, len(result.Freelancers))
	for _, m := range result.Freelancers {
		top = append(top, m.Freelancer.ID)
	}
	event := models.MatchRunEvent{
		RunID:           result.RunID,
		ProjectID:       criteria.ProjectID,
		Total:           result.Total,
		Scored:          result.Scored,
		Excluded:        len(criteria.ExcludeUserIDs),
		Gated:           gated,
		Partial:         result.Partial,
		DurationMs:      elapsed.Milliseconds(),
		TopCandidateIDs: top,
		CompletedAt:     s.now().UTC(),
	}
	if err := s.publisher.PublishMatchRun(ctx, event); err != nil {
		log.Warn("Failed to publish match run event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func excludeCandidates(pool []models.CandidateProfile, exclude []string) []models.CandidateProfile {
	if len(exclude) == 0 {
		return pool
	}
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	out := make([]models.CandidateProfile, 0, len(pool))
	for _, c := range pool {
		if !skip[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
