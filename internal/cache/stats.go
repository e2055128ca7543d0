package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"reelshelf/internal/model"
)

const (
	// StatsCachePrefix keys per-user computed statistics
	StatsCachePrefix = "stats:user:"

	// StatsCacheTTL bounds staleness even if an invalidation is lost.
	// Invalidation on every library mutation is the primary mechanism;
	// the month/year buckets also roll over with wall-clock time, so the
	// TTL stays short.
	StatsCacheTTL = 10 * time.Minute
)

// StatsCache holds fully-computed MovieStats per user between library
// changes. Stats are always recomputed from scratch on a miss.
type StatsCache interface {
	Get(ctx context.Context, userID int64) (*model.MovieStats, bool)
	Set(ctx context.Context, userID int64, stats *model.MovieStats)
	// Invalidate drops the cached stats for a user. Called after any
	// movie create/update/delete.
	Invalidate(ctx context.Context, userID int64) error
}

// RedisStatsCache implements StatsCache with JSON values.
type RedisStatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a StatsCache backed by Redis.
func NewStatsCache(client *redis.Client) StatsCache {
	return &RedisStatsCache{client: client}
}

func statsKey(userID int64) string {
	return fmt.Sprintf("%s%d", StatsCachePrefix, userID)
}

// Get returns cached stats. Any cache failure degrades to a miss.
func (c *RedisStatsCache) Get(ctx context.Context, userID int64) (*model.MovieStats, bool) {
	data, err := c.client.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[StatsCache] Get error: user=%d err=%v", userID, err)
		}
		return nil, false
	}

	var stats model.MovieStats
	if err := json.Unmarshal(data, &stats); err != nil {
		log.Printf("[StatsCache] Get unmarshal error: user=%d err=%v", userID, err)
		return nil, false
	}
	return &stats, true
}

// Set stores computed stats, best-effort.
func (c *RedisStatsCache) Set(ctx context.Context, userID int64, stats *model.MovieStats) {
	data, err := json.Marshal(stats)
	if err != nil {
		log.Printf("[StatsCache] Set marshal error: user=%d err=%v", userID, err)
		return
	}
	if err := c.client.Set(ctx, statsKey(userID), data, StatsCacheTTL).Err(); err != nil {
		log.Printf("[StatsCache] Set error: user=%d err=%v", userID, err)
	}
}

// Invalidate drops the cached stats for a user.
func (c *RedisStatsCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, statsKey(userID)).Err(); err != nil {
		log.Printf("[StatsCache] Invalidate FAILED: user=%d err=%v", userID, err)
		return fmt.Errorf("invalidate stats cache: %w", err)
	}
	return nil
}
