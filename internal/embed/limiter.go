package embed

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobmatch/internal/model"
)

// Ensure limitedEmbedder implements model.Embedder.
var _ model.Embedder = (*limitedEmbedder)(nil)

type limitedEmbedder struct {
	limiter *rate.Limiter
	inner   model.Embedder
}

// WithRateLimit wraps e so calls never exceed perSecond requests per second.
// A non-positive limit returns e unchanged.
func WithRateLimit(e model.Embedder, perSecond int) model.Embedder {
	if perSecond <= 0 {
		return e
	}
	return &limitedEmbedder{
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		inner:   e,
	}
}

func (l *limitedEmbedder) Embed(ctx context.Context, text string) ([][]float32, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", model.ErrEmbedding, err)
	}
	return l.inner.Embed(ctx, text)
}
