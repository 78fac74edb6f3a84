package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter used to keep the generative
// fallback within the API's request budget.
type RateLimiter struct {
	mu                sync.Mutex
	requestsPerMinute int
	lastRequests      []time.Time
}

// NewRateLimiter creates a limiter allowing rpm requests per minute.
func NewRateLimiter(rpm int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: rpm,
		lastRequests:      make([]time.Time, 0),
	}
}

// Wait blocks until a request fits in the window or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-time.Minute)

	valid := r.lastRequests[:0]
	for _, t := range r.lastRequests {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	r.lastRequests = valid

	if len(r.lastRequests) >= r.requestsPerMinute {
		oldest := r.lastRequests[0]
		waitDuration := oldest.Add(time.Minute).Sub(now)

		if waitDuration > 0 {
			slog.Info("Generation rate limit reached, waiting",
				"waitSeconds", waitDuration.Seconds(),
				"rpm", r.requestsPerMinute,
			)

			select {
			case <-time.After(waitDuration):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	r.lastRequests = append(r.lastRequests, now)
	return nil
}
