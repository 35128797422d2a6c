package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Unlimited(t *testing.T) {
	r := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		require.True(t, r.Allow())
	}
}

func TestRateLimiter_Burst(t *testing.T) {
	r := NewRateLimiter(2)

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestRateLimiter_Backoff(t *testing.T) {
	r := NewRateLimiter(0)
	r.Backoff(time.Hour)

	assert.False(t, r.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiter_Wait(t *testing.T) {
	r := NewRateLimiter(1000)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Wait(ctx))
	}
}

func TestRateLimiter_SetRate(t *testing.T) {
	r := NewRateLimiter(1)
	require.True(t, r.Allow())
	require.False(t, r.Allow())

	r.SetRate(0)

	for i := 0; i < 10; i++ {
		assert.True(t, r.Allow())
	}
}
