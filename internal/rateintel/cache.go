// internal/rateintel/cache.go
package rateintel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"talent-matching-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const segmentKeyPrefix = "rate:segment:"

type RedisSegmentCache struct {
	client *redis.Client
}

func NewRedisSegmentCache(client *redis.Client) *RedisSegmentCache {
	return &RedisSegmentCache{client: client}
}

func cacheKey(key models.SegmentKey) string {
	return segmentKeyPrefix + key.String()
}

func (c *RedisSegmentCache) Get(ctx context.Context, key models.SegmentKey) (*models.RateSegment, error) {
	raw, err := c.client.Get(ctx, cacheKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var seg models.RateSegment
	if err := json.Unmarshal([]byte(raw), &seg); err != nil {
		return nil, fmt.Errorf("decode cached segment: %w", err)
	}
	return &seg, nil
}

func (c *RedisSegmentCache) Set(ctx context.Context, seg *models.RateSegment, ttl time.Duration) error {
	data, err := json.Marshal(seg)
	if err != nil {
		return fmt.Errorf("encode segment: %w", err)
	}
	return c.client.Set(ctx, cacheKey(seg.Key), data, ttl).Err()
}
