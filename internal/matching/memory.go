// internal/matching/memory.go
package matching

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"talent-matching-workers/internal/models"
)

// MemoryStore is an in-process CandidateStore used by the CLI and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles []models.CandidateProfile
	failures []models.CandidateLoadFailure
	err      error
	calls    int
}

func NewMemoryStore(profiles ...models.CandidateProfile) *MemoryStore {
	return &MemoryStore{profiles: profiles}
}

func (m *MemoryStore) Add(profiles ...models.CandidateProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = append(m.profiles, profiles...)
}

// AddFailure registers a candidate whose core profile cannot be decoded.
func (m *MemoryStore) AddFailure(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, models.CandidateLoadFailure{CandidateID: id, Err: err})
}

// FailWith makes every subsequent call return err.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryStore) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MemoryStore) ListCandidates(ctx context.Context, filter models.CandidateFilter) (*models.CandidateBatch, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	excluded := make(map[string]bool, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = true
	}

	batch := &models.CandidateBatch{}
	for _, p := range m.profiles {
		if excluded[p.ID] {
			continue
		}
		if filter.Limit > 0 && len(batch.Profiles) >= filter.Limit {
			break
		}
		batch.Profiles = append(batch.Profiles, p)
	}
	for _, f := range m.failures {
		if !excluded[f.CandidateID] {
			batch.Failures = append(batch.Failures, f)
		}
	}
	return batch, nil
}

func (m *MemoryStore) GetCandidate(ctx context.Context, id string) (*models.CandidateProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.profiles {
		if p.ID == id {
			profile := p
			return &profile, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
}

// StaticSkillGraph serves related skills from a fixed map keyed by
// lower-cased skill.
type StaticSkillGraph struct {
	related models.RelatedSkillsMap
}

func NewStaticSkillGraph(related models.RelatedSkillsMap) *StaticSkillGraph {
	normalized := make(models.RelatedSkillsMap, len(related))
	for skill, rel := range related {
		key := strings.ToLower(strings.TrimSpace(skill))
		normalized[key] = append(normalized[key], rel...)
	}
	return &StaticSkillGraph{related: normalized}
}

func (g *StaticSkillGraph) RelatedSkills(ctx context.Context, skills []string) (models.RelatedSkillsMap, error) {
	out := make(models.RelatedSkillsMap)
	for _, s := range skills {
		key := strings.ToLower(strings.TrimSpace(s))
		if rel, ok := g.related[key]; ok {
			out[key] = rel
		}
	}
	return out, nil
}
