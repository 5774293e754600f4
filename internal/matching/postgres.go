// internal/matching/postgres.go
package matching

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/models"

	"github.com/lib/pq"
)

const (
	candidateColumns = `
		SELECT id, display_name, headline, hourly_rate, years_experience,
		       platform_project_count, trust_score, verification_tier
		FROM freelancers`

	listCandidatesQuery = candidateColumns + `
		WHERE is_active = true AND NOT (id = ANY($1))
		ORDER BY id
		LIMIT NULLIF($2, 0)`

	getCandidateQuery = candidateColumns + `
		WHERE id = $1`

	skillsQuery = `
		SELECT freelancer_id, skill, endorsement_count
		FROM freelancer_skills
		WHERE freelancer_id = ANY($1)`

	complianceQuery = `
		SELECT freelancer_id, compliance_type, status, expires_at, self_attested
		FROM compliance_records
		WHERE freelancer_id = ANY($1)`

	clearancesQuery = `
		SELECT freelancer_id, level, granted_at, expires_at
		FROM clearances
		WHERE freelancer_id = ANY($1)`

	attestationsQuery = `
		SELECT freelancer_id, attestation_type, attested_at, expires_at
		FROM attestations
		WHERE freelancer_id = ANY($1)`

	workPatternsQuery = `
		SELECT freelancer_id, timezone, max_concurrent_projects, current_active_projects,
		       weekly_hours_available, available_from, avg_response_time_minutes,
		       avg_first_bid_time_hours, last_active_at
		FROM work_patterns
		WHERE freelancer_id = ANY($1)`

	successMetricsQuery = `
		SELECT freelancer_id, total_projects, completed_projects, avg_rating,
		       on_time_delivery_rate, repeat_client_rate
		FROM success_metrics
		WHERE freelancer_id = ANY($1)`
)

// Labels recorded in CandidateProfile.Degraded.
const (
	SectionSkills         = "skills"
	SectionCompliance     = "compliance records"
	SectionClearances     = "clearances"
	SectionAttestations   = "attestations"
	SectionWorkPattern    = "work pattern"
	SectionSuccessMetrics = "success metrics"
)

// PostgresCandidateStore loads candidates with one query per profile section
// for the whole pool.
type PostgresCandidateStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresCandidateStore(db *sql.DB, log logger.Logger) *PostgresCandidateStore {
	return &PostgresCandidateStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "candidate-store", "backend": "postgres"}),
	}
}

type coreRow struct {
	id               string
	displayName      sql.NullString
	headline         sql.NullString
	hourlyRate       sql.NullFloat64
	yearsExperience  sql.NullFloat64
	platformProjects sql.NullInt64
	trustScore       sql.NullFloat64
	tier             sql.NullString
}

func (r coreRow) decode() (models.CandidateProfile, error) {
	c := models.CandidateProfile{
		ID:                   r.id,
		DisplayName:          r.displayName.String,
		Headline:             r.headline.String,
		PlatformProjectCount: int(r.platformProjects.Int64),
		VerificationTier:     models.VerificationTier(strings.ToUpper(r.tier.String)),
		Endorsements:         map[string]int{},
	}
	if r.hourlyRate.Valid {
		if r.hourlyRate.Float64 < 0 {
			return c, fmt.Errorf("negative hourly rate %v", r.hourlyRate.Float64)
		}
		v := r.hourlyRate.Float64
		c.HourlyRate = &v
	}
	if r.yearsExperience.Valid {
		v := r.yearsExperience.Float64
		c.YearsExperience = &v
	}
	if r.trustScore.Valid {
		if r.trustScore.Float64 < 0 || r.trustScore.Float64 > 100 {
			return c, fmt.Errorf("trust score %v out of range", r.trustScore.Float64)
		}
		v := r.trustScore.Float64
		c.TrustScore = &v
	}
	return c, nil
}

func (s *PostgresCandidateStore) ListCandidates(ctx context.Context, filter models.CandidateFilter) (*models.CandidateBatch, error) {
	exclude := filter.ExcludeIDs
	if exclude == nil {
		exclude = []string{}
	}
	rows, err := s.db.QueryContext(ctx, listCandidatesQuery, pq.Array(exclude), filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	return s.load(ctx, rows)
}

func (s *PostgresCandidateStore) GetCandidate(ctx context.Context, id string) (*models.CandidateProfile, error) {
	rows, err := s.db.QueryContext(ctx, getCandidateQuery, id)
	if err != nil {
		return nil, fmt.Errorf("query candidate %s: %w", id, err)
	}
	batch, err := s.load(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(batch.Failures) > 0 {
		return nil, fmt.Errorf("decode candidate %s: %w", id, batch.Failures[0].Err)
	}
	if len(batch.Profiles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
	}
	return &batch.Profiles[0], nil
}

func (s *PostgresCandidateStore) load(ctx context.Context, rows *sql.Rows) (*models.CandidateBatch, error) {
	defer rows.Close()

	batch := &models.CandidateBatch{}
	for rows.Next() {
		var r coreRow
		if err := rows.Scan(&r.id, &r.displayName, &r.headline, &r.hourlyRate, &r.yearsExperience,
			&r.platformProjects, &r.trustScore, &r.tier); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c, err := r.decode()
		if err != nil {
			batch.Failures = append(batch.Failures, models.CandidateLoadFailure{CandidateID: r.id, Err: err})
			continue
		}
		batch.Profiles = append(batch.Profiles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	if len(batch.Profiles) == 0 {
		return batch, nil
	}

	index := make(map[string]*models.CandidateProfile, len(batch.Profiles))
	ids := make([]string, 0, len(batch.Profiles))
	for i := range batch.Profiles {
		index[batch.Profiles[i].ID] = &batch.Profiles[i]
		ids = append(ids, batch.Profiles[i].ID)
	}

	sections := []struct {
		name string
		load func(context.Context, []string, map[string]*models.CandidateProfile) error
	}{
		{SectionSkills, s.loadSkills},
		{SectionCompliance, s.loadCompliance},
		{SectionClearances, s.loadClearances},
		{SectionAttestations, s.loadAttestations},
		{SectionWorkPattern, s.loadWorkPatterns},
		{SectionSuccessMetrics, s.loadSuccessMetrics},
	}
	for _, sec := range sections {
		if err := sec.load(ctx, ids, index); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("Candidate section unavailable", map[string]interface{}{
				"section":    sec.name,
				"candidates": len(ids),
				"error":      err.Error(),
			})
			for _, c := range index {
				c.Degraded = append(c.Degraded, sec.name)
			}
		}
	}
	return batch, nil
}

// each runs an auxiliary section query and hands every row to scan.
func (s *PostgresCandidateStore) each(ctx context.Context, query string, ids []string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *PostgresCandidateStore) loadSkills(ctx context.Context, ids []string, index map[string]*models.CandidateProfile) error {
	return s.each(ctx, skillsQuery, ids, func(rows *sql.Rows) error {
		var id, skill string
		var endorsements sql.NullInt64
		if err := rows.Scan(&id, &skill, &endorsements); err != nil {
			return err
		}
		if c, ok := index[id]; ok {
			c.Skills = append(c.Skills, skill)
			if endorsements.Int64 > 0 {
				c.Endorsements[strings.ToLower(skill)] = int(endorsements.Int64)
			}
		}
		return nil
	})
}

func (s *PostgresCandidateStore) loadCompliance(ctx context.Context, ids []string, index map[string]*models.CandidateProfile) error {
	return s.each(ctx, complianceQuery, ids, func(rows *sql.Rows) error {
		var id string
		var rec models.ComplianceRecord
		var expires sql.NullTime
		var status string
		if err := rows.Scan(&id, &rec.Type, &status, &expires, &rec.SelfAttested); err != nil {
			return err
		}
		rec.Status = models.VerificationStatus(strings.ToUpper(status))
		if expires.Valid {
			t := expires.Time
			rec.ExpiresAt = &t
		}
		if c, ok := index[id]; ok {
			c.ComplianceRecords = append(c.ComplianceRecords, rec)
		}
		return nil
	})
}

func (s *PostgresCandidateStore) loadClearances(ctx context.Context, ids []string, index map[string]*models.CandidateProfile) error {
	return s.each(ctx, clearancesQuery, ids, func(rows *sql.Rows) error {
		var id, level string
		var granted, expires sql.NullTime
		if err := rows.Scan(&id, &level, &granted, &expires); err != nil {
			return err
		}
		rec := models.ClearanceRecord{Level: models.ClearanceLevel(strings.ToUpper(level))}
		if granted.Valid {
			t := granted.Time
			rec.GrantedAt = &t
		}
		if expires.Valid {
			t := expires.Time
			rec.ExpiresAt = &t
		}
		if c, ok := index[id]; ok {
			c.Clearances = append(c.Clearances, rec)
		}
		return nil
	})
}

func (s *PostgresCandidateStore) loadAttestations(ctx context.Context, ids []string, index map[string]*models.CandidateProfile) error {
	return s.each(ctx, attestationsQuery, ids, func(rows *sql.Rows) error {
		var id string
		var rec models.AttestationRecord
		var expires sql.NullTime
		if err := rows.Scan(&id, &rec.Type, &rec.AttestedAt, &expires); err != nil {
			return err
		}
		if expires.Valid {
			t := expires.Time
			rec.ExpiresAt = &t
		}
		if c, ok := index[id]; ok {
			c.Attestations = append(c.Attestations, rec)
		}
		return nil
	})
}

func (s *PostgresCandidateStore) loadWorkPatterns(ctx context.Context, ids []string, index map[string]*models.CandidateProfile) error {
	return s.each(ctx, workPatternsQuery, ids, func(rows *sql.Rows) error {
		var id string
		var tz sql.NullString
		var maxProjects, activeProjects sql.NullInt64
		var hours, responseMinutes, firstBidHours sql.NullFloat64
		var availableFrom, lastActive sql.NullTime
		if err := rows.Scan(&id, &tz, &maxProjects, &activeProjects, &hours, &availableFrom,
			&responseMinutes, &firstBidHours, &lastActive); err != nil {
			return err
		}
		wp := &models.WorkPattern{
			Timezone:              tz.String,
			MaxConcurrentProjects: int(maxProjects.Int64),
			CurrentActiveProjects: int(activeProjects.Int64),
			WeeklyHoursAvailable:  hours.Float64,
		}
		if availableFrom.Valid {
			t := availableFrom.Time
			wp.AvailableFrom = &t
		}
		if responseMinutes.Valid {
			v := responseMinutes.Float64
			wp.AvgResponseTimeMinutes = &v
		}
		if firstBidHours.Valid {
			v := firstBidHours.Float64
			wp.AvgFirstBidTimeHours = &v
		}
		if lastActive.Valid {
			t := lastActive.Time
			wp.LastActiveAt = &t
		}
		if c, ok := index[id]; ok {
			c.WorkPattern = wp
		}
		return nil
	})
}

func (s *PostgresCandidateStore) loadSuccessMetrics(ctx context.Context, ids []string, index map[string]*models.CandidateProfile) error {
	return s.each(ctx, successMetricsQuery, ids, func(rows *sql.Rows) error {
		var id string
		var m models.SuccessMetrics
		if err := rows.Scan(&id, &m.TotalProjects, &m.CompletedProjects, &m.AvgRating,
			&m.OnTimeDeliveryRate, &m.RepeatClientRate); err != nil {
			return err
		}
		if c, ok := index[id]; ok {
			c.SuccessMetrics = &m
		}
		return nil
	})
}

// PostgresSkillGraph reads the skill_relationships adjacency table.
type PostgresSkillGraph struct {
	db *sql.DB
}

func NewPostgresSkillGraph(db *sql.DB) *PostgresSkillGraph {
	return &PostgresSkillGraph{db: db}
}

const relatedSkillsQuery = `
	SELECT lower(skill), related_skill, strength, relationship_type
	FROM skill_relationships
	WHERE lower(skill) = ANY($1) AND strength > 0
	ORDER BY strength DESC`

func (g *PostgresSkillGraph) RelatedSkills(ctx context.Context, skills []string) (models.RelatedSkillsMap, error) {
	keys := make([]string, 0, len(skills))
	for _, sk := range skills {
		keys = append(keys, strings.ToLower(strings.TrimSpace(sk)))
	}
	rows, err := g.db.QueryContext(ctx, relatedSkillsQuery, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("query related skills: %w", err)
	}
	defer rows.Close()

	out := make(models.RelatedSkillsMap)
	for rows.Next() {
		var skill string
		var rel models.RelatedSkill
		if err := rows.Scan(&skill, &rel.Skill, &rel.Strength, &rel.RelationshipType); err != nil {
			return nil, fmt.Errorf("scan related skill: %w", err)
		}
		if rel.Strength > 1 {
			rel.Strength = 1
		}
		out[skill] = append(out[skill], rel)
	}
	return out, rows.Err()
}
