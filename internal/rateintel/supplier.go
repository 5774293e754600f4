// internal/rateintel/supplier.go
package rateintel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/common/metrics"
	"talent-matching-workers/internal/models"
)

var (
	ErrRateDataUnavailable = errors.New("RATE_DATA_UNAVAILABLE")
	ErrInvalidQuery        = errors.New("INVALID_RATE_QUERY")
)

const (
	SourceCache    = "cache"
	SourceSegment  = "segment"
	SourceComputed = "computed"
	SourceDefault  = "default"
)

// wideningFactors scale confidence by how far the lookup was widened.
var wideningFactors = []float64{1, 0.8, 0.6}

const defaultConfidence = 0.1

// Store reads market-rate data refreshed out of band.
type Store interface {
	// GetSegment returns nil, nil when the segment does not exist.
	GetSegment(ctx context.Context, key models.SegmentKey) (*models.RateSegment, error)
	ListObservations(ctx context.Context, key models.SegmentKey, since time.Time) ([]models.RateObservation, error)
	TopSegments(ctx context.Context, limit int) ([]models.SegmentKey, error)
}

// SegmentCache is a read-through cache of computed segments.
type SegmentCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, key models.SegmentKey) (*models.RateSegment, error)
	Set(ctx context.Context, seg *models.RateSegment, ttl time.Duration) error
}

type Config struct {
	MinSampleSize     int           `mapstructure:"min_sample_size"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	ObservationWindow time.Duration `mapstructure:"observation_window"`
}

func (c Config) withDefaults() Config {
	if c.MinSampleSize <= 0 {
		c.MinSampleSize = 5
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.ObservationWindow <= 0 {
		c.ObservationWindow = 180 * 24 * time.Hour
	}
	return c
}

type Supplier struct {
	store  Store
	cache  SegmentCache
	config Config
	logger logger.Logger
	now    func() time.Time
}

// NewSupplier builds a supplier. cache may be nil.
func NewSupplier(store Store, cache SegmentCache, cfg Config, log logger.Logger) *Supplier {
	return &Supplier{
		store:  store,
		cache:  cache,
		config: cfg.withDefaults(),
		logger: log.WithFields(map[string]interface{}{"component": "rate-intelligence"}),
		now:    time.Now,
	}
}

// WithClock replaces the time source, used for trend windows.
func (s *Supplier) WithClock(now func() time.Time) *Supplier {
	s.now = now
	return s
}

func (s *Supplier) Config() Config {
	return s.config
}

// wideningKeys returns the lookup keys from most to least specific.
func wideningKeys(q models.MarketRateQuery) []models.SegmentKey {
	k := q.Key()
	keys := []models.SegmentKey{k}
	if k.Region != "" {
		k.Region = ""
		keys = append(keys, k)
	}
	if k.ExperienceLevel != "" {
		k.ExperienceLevel = ""
		keys = append(keys, k)
	}
	return keys
}

// GetMarketRate resolves the market statistics for a query. When the exact
// segment has too little data the lookup widens by dropping region, then
// experience level. If nothing is found the default bands are returned with
// low confidence.
func (s *Supplier) GetMarketRate(ctx context.Context, q models.MarketRateQuery) (*models.MarketRateResult, error) {
	if q.Key().PrimarySkill == "" && q.Key().SkillCategory == "" {
		return nil, fmt.Errorf("%w: primarySkill or skillCategory required", ErrInvalidQuery)
	}

	keys := wideningKeys(q)
	failures := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seg, source, err := s.lookup(ctx, key)
		if err != nil {
			failures++
			s.logger.Warn("Rate segment lookup failed", map[string]interface{}{
				"segment": key.String(),
				"error":   err.Error(),
			})
			continue
		}
		if seg == nil {
			continue
		}
		// Confidence widens once per dimension dropped from the query key.
		dropped := droppedDimensions(q.Key(), key)
		metrics.RateLookups.WithLabelValues(source).Inc()
		return s.buildResult(q, seg, source, dropped), nil
	}

	if failures == len(keys) {
		return nil, fmt.Errorf("%w: all %d segment lookups failed", ErrRateDataUnavailable, failures)
	}

	metrics.RateLookups.WithLabelValues(SourceDefault).Inc()
	s.logger.Info("No market data for query, using default bands", map[string]interface{}{
		"segment": q.Key().String(),
	})
	return &models.MarketRateResult{
		Query:            q,
		MatchedKey:       q.Key(),
		Source:           SourceDefault,
		WideningLevel:    len(wideningFactors) - 1,
		Confidence:       defaultConfidence,
		Min:              DefaultBands.P10,
		Max:              DefaultBands.P90,
		Avg:              DefaultBands.Median,
		Bands:            DefaultBands,
		TrendDirection:   models.TrendStable,
		DemandLevel:      models.LevelMedium,
		CompetitionLevel: CompetitionLevel(DefaultBands),
	}, nil
}

func droppedDimensions(query, matched models.SegmentKey) int {
	n := 0
	if query.Region != "" && matched.Region == "" {
		n++
	}
	if query.ExperienceLevel != "" && matched.ExperienceLevel == "" {
		n++
	}
	return n
}

// lookup tries cache, stored segment, then raw observations. A nil segment
// with nil error means not enough data at this key.
func (s *Supplier) lookup(ctx context.Context, key models.SegmentKey) (*models.RateSegment, string, error) {
	if s.cache != nil {
		seg, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Debug("Rate cache read failed", map[string]interface{}{
				"segment": key.String(),
				"error":   err.Error(),
			})
		} else if seg != nil && seg.SampleSize >= s.config.MinSampleSize {
			return seg, SourceCache, nil
		}
	}

	seg, err := s.store.GetSegment(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("get segment: %w", err)
	}
	if seg != nil && seg.SampleSize >= s.config.MinSampleSize {
		s.remember(ctx, seg)
		return seg, SourceSegment, nil
	}

	now := s.now()
	obs, err := s.store.ListObservations(ctx, key, now.Add(-s.config.ObservationWindow))
	if err != nil {
		return nil, "", fmt.Errorf("list observations: %w", err)
	}
	computed := ComputeSegment(key, obs, now)
	if computed == nil || computed.SampleSize < s.config.MinSampleSize {
		return nil, "", nil
	}
	s.remember(ctx, computed)
	return computed, SourceComputed, nil
}

func (s *Supplier) remember(ctx context.Context, seg *models.RateSegment) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, seg, s.config.CacheTTL); err != nil {
		s.logger.Debug("Rate cache write failed", map[string]interface{}{
			"segment": seg.Key.String(),
			"error":   err.Error(),
		})
	}
}

func (s *Supplier) buildResult(q models.MarketRateQuery, seg *models.RateSegment, source string, level int) *models.MarketRateResult {
	bands := models.PercentileBands{P10: seg.P10, P25: seg.P25, Median: seg.Median, P75: seg.P75, P90: seg.P90}
	confidence := math.Min(1, float64(seg.SampleSize)/100) * wideningFactors[level]
	return &models.MarketRateResult{
		Query:             q,
		MatchedKey:        seg.Key,
		Source:            source,
		WideningLevel:     level,
		Confidence:        round2(confidence),
		SampleSize:        seg.SampleSize,
		Min:               seg.Min,
		Max:               seg.Max,
		Avg:               round2(seg.Avg),
		Bands:             bands,
		Trend30d:          seg.Trend30d,
		Trend90d:          seg.Trend90d,
		TrendDirection:    TrendDirection(seg.Trend30d),
		DemandLevel:       DemandLevel(seg),
		CompetitionLevel:  CompetitionLevel(bands),
		CompliancePremium: seg.CompliancePremiumPct,
	}
}
