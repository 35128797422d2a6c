package mongodb

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBackoff is how long requests pause after a network error.
const DefaultBackoff = 2 * time.Second

// RateLimiter throttles requests to the server. It uses a token bucket with
// an optional pause after network failures.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests per second.
// A non-positive rate disables throttling.
func NewRateLimiter(perSecond float64) *RateLimiter {
	limit, burst := rateOf(perSecond)
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

func rateOf(perSecond float64) (rate.Limit, int) {
	if perSecond <= 0 {
		return rate.Inf, 1
	}
	return rate.Limit(perSecond), max(1, int(perSecond))
}

// SetRate changes the allowed requests per second. Waiting requests pick
// up the new rate.
func (r *RateLimiter) SetRate(perSecond float64) {
	limit, burst := rateOf(perSecond)
	r.limiter.SetBurst(burst)
	r.limiter.SetLimit(limit)
}

// Wait blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// Backoff pauses all requests for d, or DefaultBackoff if d is not positive.
func (r *RateLimiter) Backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(d)
}

// Allow reports whether a request may be sent immediately.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}
