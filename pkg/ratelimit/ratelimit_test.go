package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_DrainsAndRefills(t *testing.T) {
	tb := NewTokenBucket(2, 1000)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	time.Sleep(10 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestTokenBucket_CapsAtCapacity(t *testing.T) {
	tb := NewTokenBucket(3, 1000)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, tb.Remaining())
}

func TestTokenBucket_WaitUnblocks(t *testing.T) {
	tb := NewTokenBucket(1, 200)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, tb.Wait(ctx))
	assert.Less(t, time.Since(start), time.Second)
}

func TestTokenBucket_WaitHonorsContext(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, tb.Wait(ctx), context.Canceled)
}

func TestSlidingWindow_LimitsPerWindow(t *testing.T) {
	sw := NewSlidingWindow(2, 50*time.Millisecond)

	assert.True(t, sw.Allow())
	assert.True(t, sw.Allow())
	assert.False(t, sw.Allow())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, sw.Allow())
}

func TestSlidingWindow_WaitUnblocksAfterWindow(t *testing.T) {
	sw := NewSlidingWindow(1, 30*time.Millisecond)
	require.True(t, sw.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, sw.Wait(ctx))
	assert.Less(t, time.Since(start), time.Second)
}

func TestRegistry_RoutesByEndpoint(t *testing.T) {
	r := NewRegistry()

	// Order posts and unknown endpoints draw from different budgets.
	assert.NotSame(t, r.limiter("POST", "/order"), r.limiter("GET", "/never-seen"))
	assert.Same(t, r.limiter("GET", "/never-seen"), r.limiter("GET", "/also-unknown"))

	assert.True(t, r.Allow("POST", "/order"))
	require.NoError(t, r.Wait(context.Background(), "DELETE", "/order"))
}
