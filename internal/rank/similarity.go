package rank

import (
	"fmt"
	"math"

	"github.com/amishk599/jobmatch/internal/model"
)

// MeanPool averages token-level vectors into one vector.
func MeanPool(rows [][]float32) ([]float64, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no vectors to pool", model.ErrEmbedding)
	}
	dims := len(rows[0])
	pooled := make([]float64, dims)
	for i, row := range rows {
		if len(row) != dims {
			return nil, fmt.Errorf("%w: row %d has %d dimensions, want %d", model.ErrEmbedding, i, len(row), dims)
		}
		for j, v := range row {
			pooled[j] += float64(v)
		}
	}
	n := float64(len(rows))
	for j := range pooled {
		pooled[j] /= n
	}
	return pooled, nil
}

// ErrZeroNorm reports a vector with no direction; its similarity is undefined.
var ErrZeroNorm = fmt.Errorf("%w: zero-norm vector", model.ErrEmbedding)

// Cosine returns the cosine similarity of a and b. A zero-norm vector
// yields 0 with ErrZeroNorm so callers never keep it.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch %d vs %d", model.ErrEmbedding, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, ErrZeroNorm
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
