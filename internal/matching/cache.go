// internal/matching/cache.go
package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"talent-matching-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	profileKeyPrefix       = "compliance:profile:"
	DefaultProfileCacheTTL = 15 * time.Minute
)

// RedisProfileCache keeps derived compliance profiles between runs. A profile
// is reused only on the day it was built and only while nothing it was built
// from has expired or entered the expiring window since.
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProfileCache(client *redis.Client, ttl time.Duration) *RedisProfileCache {
	if ttl <= 0 {
		ttl = DefaultProfileCacheTTL
	}
	return &RedisProfileCache{client: client, ttl: ttl}
}

func profileKey(candidateID string) string {
	return profileKeyPrefix + candidateID
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// reusable reports whether a profile built at p.BuiltAt still holds at asOf.
func reusable(p *models.FreelancerComplianceProfile, asOf time.Time) bool {
	if asOf.Before(p.BuiltAt) || !sameDay(p.BuiltAt, asOf) {
		return false
	}
	window := p.Horizon.Sub(p.BuiltAt)
	if window < 0 {
		window = 0
	}
	horizon := asOf.Add(window)
	for _, exp := range p.Expiries() {
		if exp.After(p.BuiltAt) && !exp.After(asOf) {
			return false
		}
		if exp.After(p.Horizon) && !exp.After(horizon) {
			return false
		}
	}
	return true
}

func (c *RedisProfileCache) Get(ctx context.Context, candidateID string, asOf time.Time) (*models.FreelancerComplianceProfile, error) {
	raw, err := c.client.Get(ctx, profileKey(candidateID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var p models.FreelancerComplianceProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}
	if !reusable(&p, asOf) {
		return nil, nil
	}
	return &p, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, profile *models.FreelancerComplianceProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return c.client.Set(ctx, profileKey(profile.CandidateID), data, c.ttl).Err()
}

// Invalidate drops cached profiles.
func (c *RedisProfileCache) Invalidate(ctx context.Context, candidateIDs ...string) error {
	if len(candidateIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		keys = append(keys, profileKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}
