package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobmatch/internal/listing"
	"github.com/amishk599/jobmatch/internal/metrics"
	"github.com/amishk599/jobmatch/internal/model"
)

// Collector gathers raw records from every source for a query.
type Collector interface {
	Collect(ctx context.Context, q model.SearchQuery) []model.JobRecord
}

// Result is everything one search produced, stage by stage.
type Result struct {
	RequestID string
	Collected []model.JobRecord // raw records with a title, in source order
	Ranked    []model.ScoredJob // records that passed ranking
	Listings  []model.JobListing
}

// Service owns the full pipeline for a single query:
// collect → drop untitled → rank → shape.
type Service struct {
	collector Collector
	ranker    model.Ranker
	mode      string
	logger    *slog.Logger
}

// NewService wires a pipeline. A nil ranker passes every titled record.
// mode labels metrics and logs ("api", "cli", "batch").
func NewService(collector Collector, ranker model.Ranker, mode string, logger *slog.Logger) *Service {
	return &Service{
		collector: collector,
		ranker:    ranker,
		mode:      mode,
		logger:    logger,
	}
}

// Run executes one search. It never fails: sources and records that error
// out simply contribute nothing.
func (s *Service) Run(ctx context.Context, q model.SearchQuery) Result {
	start := time.Now()
	res := Result{RequestID: uuid.NewString()}
	logger := s.logger.With("request_id", res.RequestID)

	raw := s.collector.Collect(ctx, q)
	for _, r := range raw {
		if r.HasTitle() {
			res.Collected = append(res.Collected, r)
		}
	}

	if s.ranker != nil {
		res.Ranked = s.ranker.Filter(ctx, res.Collected, q.RelevanceText())
	} else {
		res.Ranked = make([]model.ScoredJob, len(res.Collected))
		for i, r := range res.Collected {
			res.Ranked[i] = model.ScoredJob{JobRecord: r}
		}
	}
	res.Listings = listing.FromScored(res.Ranked)

	took := time.Since(start)
	metrics.SearchesTotal.WithLabelValues(s.mode).Inc()
	metrics.SearchDuration.WithLabelValues(s.mode).Observe(took.Seconds())

	logger.Info("search complete",
		"position", q.Position,
		"location", q.Location,
		"fetched", len(raw),
		"titled", len(res.Collected),
		"ranked", len(res.Ranked),
		"took", took.Round(time.Millisecond),
	)
	return res
}

// Search runs the pipeline and returns only the shaped listings.
func (s *Service) Search(ctx context.Context, q model.SearchQuery) []model.JobListing {
	return s.Run(ctx, q).Listings
}
