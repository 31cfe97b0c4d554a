package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobmatch/internal/model"
)

// SourceLimiter enforces a minimum delay between requests to the same site.
// It is shared across concurrent searches so bursts of API calls do not
// translate into bursts against one site.
type SourceLimiter struct {
	mu       sync.Mutex
	next     map[string]time.Time // key: source name, earliest allowed start
	minDelay time.Duration
}

// NewSourceLimiter creates a limiter that enforces minDelay between
// consecutive requests to the same source.
func NewSourceLimiter(minDelay time.Duration) *SourceLimiter {
	return &SourceLimiter{
		next:     make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until the source's slot comes up. Returns an error if the
// context is cancelled while waiting.
func (r *SourceLimiter) Wait(ctx context.Context, source string) error {
	if r.minDelay <= 0 {
		return nil
	}

	// Reserve a slot under the lock, then sleep outside it.
	r.mu.Lock()
	now := time.Now()
	slot := now
	if next, ok := r.next[source]; ok && next.After(now) {
		slot = next
	}
	r.next[source] = slot.Add(r.minDelay)
	r.mu.Unlock()

	remaining := slot.Sub(now)
	if remaining <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", source, ctx.Err())
	case <-time.After(remaining):
	}
	return nil
}

// Ensure RateLimitedSource implements model.Source.
var _ model.Source = (*RateLimitedSource)(nil)

// RateLimitedSource is a decorator that waits on a SourceLimiter before
// delegating to the wrapped source.
type RateLimitedSource struct {
	inner   model.Source
	limiter *SourceLimiter
}

// NewRateLimitedSource wraps a source with site-level rate limiting.
// All sources hitting the same site should share the same limiter instance.
func NewRateLimitedSource(inner model.Source, limiter *SourceLimiter) *RateLimitedSource {
	return &RateLimitedSource{inner: inner, limiter: limiter}
}

func (s *RateLimitedSource) Name() string { return s.inner.Name() }

// ListJobs waits for the limiter, then delegates. A cancelled wait yields no records.
func (s *RateLimitedSource) ListJobs(ctx context.Context, q model.SearchQuery) []model.JobRecord {
	if err := s.limiter.Wait(ctx, s.inner.Name()); err != nil {
		return nil
	}
	return s.inner.ListJobs(ctx, q)
}
