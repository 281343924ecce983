package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerSecond_BurstFloor(t *testing.T) {
	l := PerSecond(10, 2)
	assert.Equal(t, 10, l.Burst)
	assert.Equal(t, time.Second, l.Period)
}

func TestRedisLimiter_RejectsAfterBurst(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	lim := NewRedisLimiter(rdb)
	limit := Limit{Rate: 2, Period: time.Minute, Burst: 2}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := lim.Allow(ctx, "rl:user:1", limit)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
	}
	d, err := lim.Allow(ctx, "rl:user:1", limit)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Positive(t, d.RetryAfter)

	other, err := lim.Allow(ctx, "rl:user:2", limit)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}
