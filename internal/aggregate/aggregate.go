package aggregate

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobmatch/internal/filter"
	"github.com/amishk599/jobmatch/internal/model"
)

// DefaultWorkers bounds how many sources are queried at once.
const DefaultWorkers = 2

// Collector runs every registered source for a query and concatenates the
// results in registration order. Postings listed on more than one site are
// not deduplicated.
type Collector struct {
	sources []model.Source
	workers int
	filter  model.JobFilter
	observe func(source string, count int, took time.Duration)
	logger  *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithWorkers sets the concurrency bound. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithFilter applies a keyword filter to each source's records.
func WithFilter(f model.JobFilter) Option {
	return func(c *Collector) { c.filter = f }
}

// WithObserver is called once per source with its record count and latency.
func WithObserver(fn func(source string, count int, took time.Duration)) Option {
	return func(c *Collector) { c.observe = fn }
}

// NewCollector returns a Collector over sources, in the given order.
func NewCollector(sources []model.Source, logger *slog.Logger, opts ...Option) *Collector {
	c := &Collector{
		sources: sources,
		workers: DefaultWorkers,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sources returns the registered sources.
func (c *Collector) Sources() []model.Source {
	return c.sources
}

// Collect queries all sources. A source that fails contributes nothing and
// never affects the others.
func (c *Collector) Collect(ctx context.Context, q model.SearchQuery) []model.JobRecord {
	// Each source owns one slot, so no locking is needed.
	slots := make([][]model.JobRecord, len(c.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, src := range c.sources {
		g.Go(func() error {
			start := time.Now()
			jobs := src.ListJobs(gctx, q)
			if c.filter != nil {
				jobs = filter.Apply(c.filter, jobs)
			}
			slots[i] = jobs

			took := time.Since(start)
			if c.observe != nil {
				c.observe(src.Name(), len(jobs), took)
			}
			c.logger.Info("collected source",
				"source", src.Name(),
				"jobs", len(jobs),
				"took", took.Round(time.Millisecond),
			)
			return nil
		})
	}
	_ = g.Wait() // sources absorb their own failures

	var all []model.JobRecord
	for _, jobs := range slots {
		all = append(all, jobs...)
	}
	return all
}
