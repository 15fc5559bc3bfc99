package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*LikeCounts, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := &LikeCounts{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)
	n, found, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.False(t, found)
	require.Zero(t, n)
}

func TestSetGetRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "u1", 42))
	n, found, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(42), n)

	require.Greater(t, mr.TTL(key("u1")), time.Duration(0))
}

func TestInvalidateDropsCounter(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "u1", 5))
	require.NoError(t, c.Invalidate(ctx, "u1"))

	_, found, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	require.False(t, found)

	// invalidating an absent key is fine
	require.NoError(t, c.Invalidate(ctx, "u2"))
}

func TestCounterExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "u1", 3))
	mr.FastForward(likeCountTTL + time.Minute)

	_, found, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	require.False(t, found)
}
