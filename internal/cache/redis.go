package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swipetonpro/backend/internal/config"
)

// likeCountTTL bounds staleness of the liker counter; the DB stays the
// source of truth on a miss.
const likeCountTTL = time.Hour

// LikeCounts caches "how many people liked me" per user in Redis. A swipe
// that changes the like state drops the counter; the next read recomputes
// it. Counters expire after an hour of inactivity.
type LikeCounts struct {
	Client *redis.Client
}

func NewLikeCounts(cfg config.RedisConfig) *LikeCounts {
	opts := &redis.Options{Addr: cfg.Addr}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	return &LikeCounts{Client: redis.NewClient(opts)}
}

func (c *LikeCounts) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *LikeCounts) Close() error {
	return c.Client.Close()
}

func key(userID string) string {
	return fmt.Sprintf("likes:count:%s", userID)
}

// Get returns the cached count and whether the key was present.
func (c *LikeCounts) Get(ctx context.Context, userID string) (int64, bool, error) {
	val, err := c.Client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key(userID), likeCountTTL).Err()
	return n, true, nil
}

// Set overwrites the cached count.
func (c *LikeCounts) Set(ctx context.Context, userID string, count int64) error {
	return c.Client.Set(ctx, key(userID), count, likeCountTTL).Err()
}

// Invalidate drops the cached count after a like is added or withdrawn.
// The next read recomputes the filtered count from the database.
func (c *LikeCounts) Invalidate(ctx context.Context, userID string) error {
	return c.Client.Del(ctx, key(userID)).Err()
}
