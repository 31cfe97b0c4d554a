package aggregate

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobmatch/internal/filter"
	"github.com/amishk599/jobmatch/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubSource returns fixed titles after an optional delay.
type stubSource struct {
	name   string
	titles []string
	delay  time.Duration
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) ListJobs(ctx context.Context, _ model.SearchQuery) []model.JobRecord {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.delay):
		}
	}
	var jobs []model.JobRecord
	for _, t := range s.titles {
		jobs = append(jobs, model.JobRecord{Title: t, Source: s.name})
	}
	return jobs
}

func TestCollect_ConcatenatesInRegistrationOrder(t *testing.T) {
	// The first source finishes last; order must still follow registration.
	a := &stubSource{name: "a", titles: []string{"a1", "a2"}, delay: 30 * time.Millisecond}
	b := &stubSource{name: "b", titles: []string{"b1"}}
	c := NewCollector([]model.Source{a, b}, discardLogger())

	got := c.Collect(context.Background(), model.SearchQuery{})
	want := []string{"a1", "a2", "b1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d jobs, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Title != w {
			t.Errorf("position %d: expected %s, got %s", i, w, got[i].Title)
		}
	}
}

func TestCollect_FailedSourceContributesNothing(t *testing.T) {
	failing := &stubSource{name: "indeed"} // adapters absorb failures into an empty result
	ok := &stubSource{name: "linkedin", titles: []string{"Go Developer"}}
	c := NewCollector([]model.Source{failing, ok}, discardLogger())

	got := c.Collect(context.Background(), model.SearchQuery{})
	if len(got) != 1 || got[0].Source != "linkedin" {
		t.Fatalf("expected only linkedin job, got %+v", got)
	}
}

func TestCollect_NoDedup(t *testing.T) {
	a := &stubSource{name: "a", titles: []string{"Go Developer"}}
	b := &stubSource{name: "b", titles: []string{"Go Developer"}}
	got := NewCollector([]model.Source{a, b}, discardLogger()).Collect(context.Background(), model.SearchQuery{})
	if len(got) != 2 {
		t.Fatalf("expected duplicates kept, got %d", len(got))
	}
}

// gaugeSource tracks the peak number of concurrent ListJobs calls.
type gaugeSource struct {
	name    string
	current *atomic.Int32
	peak    *atomic.Int32
}

func (g *gaugeSource) Name() string { return g.name }

func (g *gaugeSource) ListJobs(_ context.Context, _ model.SearchQuery) []model.JobRecord {
	n := g.current.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	g.current.Add(-1)
	return nil
}

func TestCollect_RespectsWorkerBound(t *testing.T) {
	var current, peak atomic.Int32
	var sources []model.Source
	for i := 0; i < 6; i++ {
		sources = append(sources, &gaugeSource{name: "s", current: &current, peak: &peak})
	}

	NewCollector(sources, discardLogger(), WithWorkers(2)).Collect(context.Background(), model.SearchQuery{})
	if p := peak.Load(); p > 2 {
		t.Errorf("expected at most 2 concurrent sources, got %d", p)
	}
}

func TestCollect_FilterAndObserver(t *testing.T) {
	src := &stubSource{name: "linkedin", titles: []string{"Go Developer", "Java Developer"}}

	var mu sync.Mutex
	observed := map[string]int{}
	c := NewCollector([]model.Source{src}, discardLogger(),
		WithFilter(filter.NewKeywordFilter([]string{"go"}, nil, nil, nil)),
		WithObserver(func(source string, count int, _ time.Duration) {
			mu.Lock()
			observed[source] = count
			mu.Unlock()
		}),
	)

	got := c.Collect(context.Background(), model.SearchQuery{})
	if len(got) != 1 || got[0].Title != "Go Developer" {
		t.Fatalf("expected filtered result, got %+v", got)
	}
	if observed["linkedin"] != 1 {
		t.Errorf("expected observer count 1, got %d", observed["linkedin"])
	}
}

func TestCollect_NoSources(t *testing.T) {
	if got := NewCollector(nil, discardLogger()).Collect(context.Background(), model.SearchQuery{}); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
