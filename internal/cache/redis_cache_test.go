package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCache(rdb), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got string
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "k", "hello", time.Minute))
	hit, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "hello", got)

	mr.FastForward(2 * time.Minute)
	hit, _ = c.GetJSON(ctx, "k", &got)
	assert.False(t, hit, "entry should expire")
}

func TestRedisCacheCorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var got map[string]any
	hit, err := c.GetJSON(context.Background(), "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists("k"))
}

func TestRedisCacheDelPrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, SummaryKey("s1", "a"), "x", 0))
	require.NoError(t, c.SetJSON(ctx, SummaryKey("s1", "b"), "y", 0))
	require.NoError(t, c.SetJSON(ctx, SummaryKey("s2", "a"), "z", 0))

	require.NoError(t, c.DelPrefix(ctx, SummaryPrefix("s1")))
	assert.Len(t, mr.Keys(), 1)
	assert.True(t, mr.Exists(SummaryKey("s2", "a")))
}

func TestSummaryKeyDependsOnTranscript(t *testing.T) {
	assert.NotEqual(t, SummaryKey("s1", "Q1 A1"), SummaryKey("s1", "Q1 A1 Q2 A2"))
	assert.Equal(t, SummaryKey("s1", "t"), SummaryKey("s1", "t"))
	assert.Contains(t, SummaryKey("s1", "t"), "summary:s1:")
}
