package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeCache_MarkAndSeen(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDedupeCache(client)
	ctx := context.Background()

	seen, err := cache.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, cache.MarkProcessed(ctx, "evt_1", time.Hour))

	seen, err = cache.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	assert.True(t, s.Exists("webhook:processed:evt_1"))
	assert.Equal(t, time.Hour, s.TTL("webhook:processed:evt_1"))
}

func TestDedupeCache_Expiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDedupeCache(client)
	ctx := context.Background()

	require.NoError(t, cache.MarkProcessed(ctx, "evt_2", time.Second))
	s.FastForward(2 * time.Second)

	seen, err := cache.Seen(ctx, "evt_2")
	require.NoError(t, err)
	assert.False(t, seen, "expired entry should not short-circuit")
}

func TestDedupeCache_ServerDown(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr(), MaxRetries: -1})
	cache := NewDedupeCache(client)
	s.Close()

	_, err := cache.Seen(context.Background(), "evt_3")
	assert.Error(t, err)
}
