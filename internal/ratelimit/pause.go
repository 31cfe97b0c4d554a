package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pause sleeps a uniformly random duration in [Min, Max] after a request,
// so consecutive fetches do not arrive at a fixed cadence.
type Pause struct {
	Min, Max time.Duration
	// Rand returns a float in [0, 1). Defaults to math/rand/v2.
	Rand func() float64
	// Sleep defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPause returns a Pause between lo and hi. hi below lo is treated as lo.
func NewPause(lo, hi time.Duration) *Pause {
	if hi < lo {
		hi = lo
	}
	return &Pause{Min: lo, Max: hi}
}

// Duration picks the next pause length.
func (p *Pause) Duration() time.Duration {
	r := rand.Float64
	if p.Rand != nil {
		r = p.Rand
	}
	span := p.Max - p.Min
	if span <= 0 {
		return p.Min
	}
	return p.Min + time.Duration(r()*float64(span))
}

// Wait sleeps for Duration, returning early with ctx's error on cancellation.
func (p *Pause) Wait(ctx context.Context) error {
	d := p.Duration()
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
