package redis_test

import (
	"context"
	"testing"
	"time"

	"meli-reconciler/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewRateLimitStore(client)
	ctx := context.Background()

	t.Run("allows requests within limit", func(t *testing.T) {
		for i := int64(1); i <= 3; i++ {
			result, err := store.Allow(ctx, "10.0.0.1:webhook", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d should be allowed", i)
			assert.Equal(t, int64(3), result.Limit)
			assert.Equal(t, 3-i, result.Remaining)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		result, err := store.Allow(ctx, "10.0.0.1:webhook", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, int64(0), result.Remaining)
	})

	t.Run("different keys are independent", func(t *testing.T) {
		result, err := store.Allow(ctx, "10.0.0.2:webhook", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, int64(4), result.Remaining)
	})

	t.Run("reset after window expires", func(t *testing.T) {
		key := "10.0.0.3:admin"
		_, err := store.Allow(ctx, key, 1, time.Minute)
		require.NoError(t, err)

		result, err := store.Allow(ctx, key, 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)

		mr.FastForward(61 * time.Second)

		// miniredis expires the old key; the real clock may still be in
		// the same window, so only the counter reset is checked.
		result, err = store.Allow(ctx, key, 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("sets correct ResetAt", func(t *testing.T) {
		result, err := store.Allow(ctx, "10.0.0.4:webhook", 10, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Greater(t, result.ResetAt, time.Now().Unix()-1)
	})
}

func TestRateLimitStore_WindowBoundary(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	now := time.Date(2024, 9, 12, 10, 0, 45, 0, time.UTC)
	store := redis.NewRateLimitStore(client).WithClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := store.Allow(ctx, "10.0.0.9:notifications", 1, time.Minute)
	require.NoError(t, err)

	blocked, err := store.Allow(ctx, "10.0.0.9:notifications", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)
	assert.Equal(t, 15*time.Second, blocked.RetryAfter)
	assert.Equal(t, time.Date(2024, 9, 12, 10, 1, 0, 0, time.UTC).Unix(), blocked.ResetAt)

	// The next window uses a fresh counter while the old key is still alive.
	now = now.Add(20 * time.Second)
	next, err := store.Allow(ctx, "10.0.0.9:notifications", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, next.Allowed)
	assert.Zero(t, next.RetryAfter)
}
