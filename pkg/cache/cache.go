// Package cache provides a small nil-safe Redis helper used for caching
// per-match seat counts. When no Redis server is configured or reachable the
// helpers silently no-op, so callers never have to branch on availability.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const seatCountTTL = 30 * time.Second

// Cache wraps an optional Redis client. A Cache with a nil client is valid
// and behaves as an always-miss cache.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at addr and returns a Cache. When addr is empty or
// the server cannot be reached within a short timeout, the returned Cache is
// disabled rather than failing startup.
func New(addr, password string, db int) *Cache {
	if addr == "" {
		return &Cache{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return &Cache{}
	}
	return &Cache{client: client}
}

// Enabled reports whether a Redis connection is backing this cache.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func seatCountKey(matchID uint) string {
	return fmt.Sprintf("rinkmate:match:%d:seats", matchID)
}

// GetSeatCounts loads cached seat counts for a match into dest.
// Returns false on miss, disabled cache, or decode failure.
func (c *Cache) GetSeatCounts(ctx context.Context, matchID uint, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, seatCountKey(matchID)).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// SetSeatCounts stores seat counts for a match with a short TTL.
func (c *Cache) SetSeatCounts(ctx context.Context, matchID uint, counts interface{}) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, seatCountKey(matchID), raw, seatCountTTL).Err()
}

// InvalidateSeatCounts drops the cached seat counts after a join, cancel or
// promotion changes them.
func (c *Cache) InvalidateSeatCounts(ctx context.Context, matchID uint) {
	if !c.Enabled() {
		return
	}
	_ = c.client.Del(ctx, seatCountKey(matchID)).Err()
}
