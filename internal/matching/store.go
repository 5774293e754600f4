// internal/matching/store.go
package matching

import (
	"context"
	"errors"
	"time"

	"talent-matching-workers/internal/models"
)

var (
	ErrCandidateNotFound    = errors.New("CANDIDATE_NOT_FOUND")
	ErrCandidateStoreFailed = errors.New("CANDIDATE_STORE_UNAVAILABLE")
)

// CandidateStore loads candidate profiles in bulk. A returned error means the
// whole pool is unavailable; per-candidate problems go into the batch.
type CandidateStore interface {
	ListCandidates(ctx context.Context, filter models.CandidateFilter) (*models.CandidateBatch, error)
	GetCandidate(ctx context.Context, id string) (*models.CandidateProfile, error)
}

// SkillGraph resolves related skills for the required skills of a run.
type SkillGraph interface {
	RelatedSkills(ctx context.Context, skills []string) (models.RelatedSkillsMap, error)
}

// ProfileCache stores derived compliance profiles. Get returns nil, nil on a
// miss or when the cached profile no longer holds at asOf.
type ProfileCache interface {
	Get(ctx context.Context, candidateID string, asOf time.Time) (*models.FreelancerComplianceProfile, error)
	Set(ctx context.Context, profile *models.FreelancerComplianceProfile) error
	Invalidate(ctx context.Context, candidateIDs ...string) error
}

type MarketRateSource interface {
	GetMarketRate(ctx context.Context, q models.MarketRateQuery) (*models.MarketRateResult, error)
}

type RunPublisher interface {
	PublishMatchRun(ctx context.Context, event models.MatchRunEvent) error
}

// RunRecorder receives per-run counts for the OpenTelemetry meters.
type RunRecorder interface {
	RecordCandidatesScored(ctx context.Context, n int)
}
