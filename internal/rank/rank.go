package rank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobmatch/internal/metrics"
	"github.com/amishk599/jobmatch/internal/model"
)

// DefaultThreshold is the similarity a record must strictly exceed.
const DefaultThreshold = 0.7

// Ensure EmbeddingRanker implements model.Ranker.
var _ model.Ranker = (*EmbeddingRanker)(nil)

// EmbeddingRanker keeps records whose description is semantically close to
// the query, comparing mean-pooled embeddings by cosine similarity.
type EmbeddingRanker struct {
	embedder  model.Embedder
	threshold float64
	workers   int
	logger    *slog.Logger
}

// NewEmbeddingRanker returns a ranker. workers bounds concurrent record
// scoring and defaults to GOMAXPROCS.
func NewEmbeddingRanker(embedder model.Embedder, threshold float64, workers int, logger *slog.Logger) *EmbeddingRanker {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &EmbeddingRanker{
		embedder:  embedder,
		threshold: threshold,
		workers:   workers,
		logger:    logger,
	}
}

// Threshold returns the configured cutoff.
func (r *EmbeddingRanker) Threshold() float64 { return r.threshold }

// Filter scores every record against queryText and returns those scoring
// strictly above the threshold, in input order. Records whose embedding
// fails or has zero norm are dropped; if the query itself cannot be embedded
// or has zero norm, nothing passes.
func (r *EmbeddingRanker) Filter(ctx context.Context, records []model.JobRecord, queryText string) []model.ScoredJob {
	if len(records) == 0 {
		return nil
	}

	query, err := r.vector(ctx, queryText)
	if err != nil {
		r.logger.Error("query embedding failed", "kind", model.ErrorKind(err), "error", err)
		return nil
	}
	if isZero(query) {
		r.logger.Warn("query has no usable tokens, nothing ranked", "query", queryText)
		return nil
	}

	type result struct {
		score float64
		ok    bool
	}
	results := make([]result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, rec := range records {
		g.Go(func() error {
			score, err := r.score(gctx, rec, query)
			if errors.Is(err, ErrZeroNorm) {
				r.logger.Debug("record has no usable tokens", "title", rec.Title, "source", rec.Source)
				return nil
			}
			if err != nil {
				metrics.EmbeddingFailures.Inc()
				r.logger.Warn("record embedding failed",
					"title", rec.Title,
					"source", rec.Source,
					"error", err,
				)
				return nil
			}
			results[i] = result{score: score, ok: true}
			return nil
		})
	}
	_ = g.Wait() // per-record failures are absorbed above

	var kept []model.ScoredJob
	for i, res := range results {
		if res.ok && res.score > r.threshold {
			kept = append(kept, model.ScoredJob{JobRecord: records[i], Score: res.score})
		}
	}
	metrics.RankedJobs.Add(float64(len(kept)))
	r.logger.Debug("ranked records", "input", len(records), "kept", len(kept), "threshold", r.threshold)
	return kept
}

// Similarity compares two texts directly.
func (r *EmbeddingRanker) Similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := r.vector(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := r.vector(ctx, b)
	if err != nil {
		return 0, err
	}
	return Cosine(va, vb)
}

func (r *EmbeddingRanker) score(ctx context.Context, rec model.JobRecord, query []float64) (float64, error) {
	v, err := r.vector(ctx, rec.Description())
	if err != nil {
		return 0, err
	}
	return Cosine(v, query)
}

func isZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func (r *EmbeddingRanker) vector(ctx context.Context, text string) ([]float64, error) {
	rows, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed %q: %w", text, err)
	}
	return MeanPool(rows)
}

// Ensure KeywordRanker implements model.Ranker.
var _ model.Ranker = (*KeywordRanker)(nil)

// KeywordRanker is the embedding-free fallback: records matching the keyword
// filter pass with score 1.
type KeywordRanker struct {
	filter model.JobFilter
}

// NewKeywordRanker wraps a keyword filter as a ranker.
func NewKeywordRanker(f model.JobFilter) *KeywordRanker {
	return &KeywordRanker{filter: f}
}

// Filter ignores queryText; relevance is whatever the keyword lists say.
func (k *KeywordRanker) Filter(_ context.Context, records []model.JobRecord, _ string) []model.ScoredJob {
	var kept []model.ScoredJob
	for _, rec := range records {
		if k.filter.Match(rec) {
			kept = append(kept, model.ScoredJob{JobRecord: rec, Score: 1})
		}
	}
	return kept
}
