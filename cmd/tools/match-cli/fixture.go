// cmd/tools/match-cli/fixture.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"talent-matching-workers/internal/models"
)

// Fixture is an offline snapshot of candidate and market data.
type Fixture struct {
	Candidates       []models.CandidateProfile `json:"candidates"`
	RelatedSkills    models.RelatedSkillsMap   `json:"relatedSkills,omitempty"`
	RateSegments     []models.RateSegment      `json:"rateSegments,omitempty"`
	RateObservations []models.RateObservation  `json:"rateObservations,omitempty"`
}

func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// fixtureRateStore serves the fixture's rate data through the rate store
// interface.
type fixtureRateStore struct {
	segments     map[string]models.RateSegment
	observations []models.RateObservation
}

func newFixtureRateStore(f *Fixture) *fixtureRateStore {
	s := &fixtureRateStore{
		segments:     make(map[string]models.RateSegment, len(f.RateSegments)),
		observations: f.RateObservations,
	}
	for _, seg := range f.RateSegments {
		seg.Key = seg.Key.Normalize()
		s.segments[seg.Key.String()] = seg
	}
	return s
}

func (s *fixtureRateStore) GetSegment(ctx context.Context, key models.SegmentKey) (*models.RateSegment, error) {
	seg, ok := s.segments[key.String()]
	if !ok {
		return nil, nil
	}
	return &seg, nil
}

func (s *fixtureRateStore) ListObservations(ctx context.Context, key models.SegmentKey, since time.Time) ([]models.RateObservation, error) {
	k := key.Normalize()
	var out []models.RateObservation
	for _, o := range s.observations {
		ok := models.SegmentKey{
			SkillCategory:   o.SkillCategory,
			PrimarySkill:    o.PrimarySkill,
			ExperienceLevel: o.ExperienceLevel,
			Region:          o.Region,
		}.Normalize()
		if !dimensionMatches(k.SkillCategory, ok.SkillCategory) ||
			!dimensionMatches(k.PrimarySkill, ok.PrimarySkill) ||
			!dimensionMatches(k.ExperienceLevel, ok.ExperienceLevel) ||
			!dimensionMatches(k.Region, ok.Region) {
			continue
		}
		if o.ObservedAt.Before(since) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *fixtureRateStore) TopSegments(ctx context.Context, limit int) ([]models.SegmentKey, error) {
	segs := make([]models.RateSegment, 0, len(s.segments))
	for _, seg := range s.segments {
		segs = append(segs, seg)
	}
	sort.Slice(segs, func(i, j int) bool {
		if segs[i].SampleSize != segs[j].SampleSize {
			return segs[i].SampleSize > segs[j].SampleSize
		}
		return segs[i].Key.String() < segs[j].Key.String()
	})
	if limit > 0 && len(segs) > limit {
		segs = segs[:limit]
	}
	keys := make([]models.SegmentKey, 0, len(segs))
	for _, seg := range segs {
		keys = append(keys, seg.Key)
	}
	return keys, nil
}

// dimensionMatches treats an empty query dimension as a wildcard.
func dimensionMatches(want, got string) bool {
	return want == "" || want == got
}
