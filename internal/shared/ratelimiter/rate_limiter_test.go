package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsBurstUpToLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Minute)

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow(), "fourth call within the interval should be rejected")
}

func TestRateLimiter_WaitWithinBurstReturnsImmediately(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, time.Minute)

	start := time.Now()
	assert.NoError(t, rl.Wait(context.Background()))
	assert.NoError(t, rl.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimiter_WaitHonoursContextCancellation(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	assert.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_WaitSleepsUntilTokenAvailable(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(10, 500*time.Millisecond) // 50ms ごとに1トークン
	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow())
	}

	start := time.Now()
	assert.NoError(t, rl.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRateLimiter_ZeroLimitIsUnlimited(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow())
	}
	assert.NoError(t, rl.Wait(context.Background()))
}
