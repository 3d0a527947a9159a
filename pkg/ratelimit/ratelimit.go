// Package ratelimit paces requests against the exchange's published
// per-endpoint budgets. Order submission burns a burst allowance refilled at
// a sustained rate, read endpoints are capped per rolling window; pacing
// locally keeps a busy caller from trading its budget for 429 responses.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits or delays requests under one endpoint budget.
type Limiter interface {
	// Allow reports whether a request may proceed now, consuming budget
	// when it may.
	Allow() bool
	// Wait blocks until a request may proceed or the context ends.
	Wait(ctx context.Context) error
}

// TokenBucket admits bursts up to capacity and refills at rate tokens per
// second. The exchange's write endpoints are specified this way: a ten-second
// burst pool with a sustained per-second refill.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     int
	rate       int
	lastRefill time.Time
}

// NewTokenBucket returns a full bucket holding capacity tokens that refills
// at rate tokens per second.
func NewTokenBucket(capacity, rate int) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		rate:       rate,
		lastRefill: time.Now(),
	}
}

// refill credits tokens for the time elapsed since the last credit. Called
// with mu held. lastRefill only advances when at least one token is added,
// so fractional intervals accumulate instead of being lost.
func (tb *TokenBucket) refill() {
	now := time.Now()
	added := int(int64(now.Sub(tb.lastRefill)) * int64(tb.rate) / int64(time.Second))
	if added > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+added)
		tb.lastRefill = now
	}
}

// Allow consumes one token if any are available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx ends.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		if tb.Allow() {
			return nil
		}
		interval := time.Second
		if tb.rate > 0 {
			interval = time.Second / time.Duration(tb.rate)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Remaining reports the tokens currently available.
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	return tb.tokens
}

// SlidingWindow admits at most limit requests per rolling window. The
// exchange's read endpoints are specified this way.
type SlidingWindow struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	requests []time.Time
}

// NewSlidingWindow returns a limiter admitting limit requests per window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{limit: limit, window: window}
}

// Allow admits the request if fewer than limit requests started inside the
// current window.
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-sw.window)
	kept := sw.requests[:0]
	for _, t := range sw.requests {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	sw.requests = kept

	if len(sw.requests) >= sw.limit {
		return false
	}
	sw.requests = append(sw.requests, now)
	return true
}

// Wait blocks until the window admits the request or ctx ends.
func (sw *SlidingWindow) Wait(ctx context.Context) error {
	for {
		if sw.Allow() {
			return nil
		}
		sw.mu.Lock()
		wait := 100 * time.Millisecond
		if len(sw.requests) > 0 {
			if until := sw.window - time.Since(sw.requests[0]); until > 0 {
				wait = until
			}
		}
		sw.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Registry maps API endpoints to their budgets. Endpoints without an entry
// share one wide fallback window.
type Registry struct {
	mu       sync.RWMutex
	limiters map[string]Limiter
	fallback Limiter
}

// NewRegistry returns a registry preloaded with the exchange's published
// budgets for the order lifecycle endpoints.
func NewRegistry() *Registry {
	return &Registry{
		limiters: map[string]Limiter{
			// Single-order writes: 2400 per 10s burst, 240/s sustained.
			"POST /order":   NewTokenBucket(2400, 240),
			"DELETE /order": NewTokenBucket(2400, 240),
			// Batch writes: 800 per 10s burst, 80/s sustained.
			"DELETE /orders":               NewTokenBucket(800, 80),
			"DELETE /cancel-all":           NewTokenBucket(800, 80),
			"DELETE /cancel-market-orders": NewTokenBucket(800, 80),
			// Reads: 150 per rolling 10s.
			"GET /data/orders": NewSlidingWindow(150, 10*time.Second),
		},
		fallback: NewSlidingWindow(5000, 10*time.Second),
	}
}

func (r *Registry) limiter(method, path string) Limiter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.limiters[method+" "+path]; ok {
		return l
	}
	return r.fallback
}

// Wait blocks until the endpoint's budget admits one request or ctx ends.
func (r *Registry) Wait(ctx context.Context, method, path string) error {
	return r.limiter(method, path).Wait(ctx)
}

// Allow reports whether the endpoint's budget admits one request now.
func (r *Registry) Allow(method, path string) bool {
	return r.limiter(method, path).Allow()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
