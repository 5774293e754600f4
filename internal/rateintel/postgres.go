// internal/rateintel/postgres.go
package rateintel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"talent-matching-workers/internal/models"
)

const (
	segmentQuery = `
		SELECT skill_category, primary_skill, experience_level, region,
		       sample_size, min_rate, max_rate, avg_rate, median_rate,
		       p10, p25, p75, p90, trend_30d, trend_90d,
		       compliance_premium_pct, bid_count, contract_count, updated_at
		FROM rate_segments
		WHERE skill_category = $1 AND primary_skill = $2
		  AND experience_level = $3 AND region = $4
		LIMIT 1`

	observationsQuery = `
		SELECT skill_category, primary_skill, experience_level, region,
		       hourly_rate, observed_at, is_bid, is_contract, compliance_required
		FROM rate_observations
		WHERE ($1 = '' OR lower(skill_category) = $1)
		  AND ($2 = '' OR lower(primary_skill) = $2)
		  AND ($3 = '' OR upper(experience_level) = $3)
		  AND ($4 = '' OR upper(region) = $4)
		  AND observed_at >= $5
		ORDER BY observed_at DESC`

	topSegmentsQuery = `
		SELECT skill_category, primary_skill, experience_level, region
		FROM rate_segments
		ORDER BY sample_size DESC
		LIMIT $1`
)

// PostgresStore reads aggregated segments and raw observations. Segment
// rows use empty strings for widened dimensions.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetSegment(ctx context.Context, key models.SegmentKey) (*models.RateSegment, error) {
	k := key.Normalize()
	var seg models.RateSegment
	err := s.db.QueryRowContext(ctx, segmentQuery, k.SkillCategory, k.PrimarySkill, k.ExperienceLevel, k.Region).Scan(
		&seg.Key.SkillCategory, &seg.Key.PrimarySkill, &seg.Key.ExperienceLevel, &seg.Key.Region,
		&seg.SampleSize, &seg.Min, &seg.Max, &seg.Avg, &seg.Median,
		&seg.P10, &seg.P25, &seg.P75, &seg.P90, &seg.Trend30d, &seg.Trend90d,
		&seg.CompliancePremiumPct, &seg.BidCount, &seg.ContractCount, &seg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query rate segment %s: %w", k, err)
	}
	seg.Key = seg.Key.Normalize()
	return &seg, nil
}

func (s *PostgresStore) ListObservations(ctx context.Context, key models.SegmentKey, since time.Time) ([]models.RateObservation, error) {
	k := key.Normalize()
	rows, err := s.db.QueryContext(ctx, observationsQuery, k.SkillCategory, k.PrimarySkill, k.ExperienceLevel, k.Region, since)
	if err != nil {
		return nil, fmt.Errorf("query rate observations %s: %w", k, err)
	}
	defer rows.Close()

	var out []models.RateObservation
	for rows.Next() {
		var o models.RateObservation
		if err := rows.Scan(
			&o.SkillCategory, &o.PrimarySkill, &o.ExperienceLevel, &o.Region,
			&o.HourlyRate, &o.ObservedAt, &o.IsBid, &o.IsContract, &o.ComplianceRequired,
		); err != nil {
			return nil, fmt.Errorf("scan rate observation: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate observations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) TopSegments(ctx context.Context, limit int) ([]models.SegmentKey, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, topSegmentsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query top segments: %w", err)
	}
	defer rows.Close()

	var out []models.SegmentKey
	for rows.Next() {
		var k models.SegmentKey
		if err := rows.Scan(&k.SkillCategory, &k.PrimarySkill, &k.ExperienceLevel, &k.Region); err != nil {
			return nil, fmt.Errorf("scan segment key: %w", err)
		}
		out = append(out, k.Normalize())
	}
	return out, rows.Err()
}
