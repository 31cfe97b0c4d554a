package embed

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/amishk599/jobmatch/internal/filter"
	"github.com/amishk599/jobmatch/internal/model"
)

const (
	// DefaultDimensions is the hashing embedder's vector size.
	DefaultDimensions = 256
	hashesPerToken    = 4
)

// Ensure HashingEmbedder implements model.Embedder.
var _ model.Embedder = (*HashingEmbedder)(nil)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "at": true, "for": true,
	"in": true, "of": true, "on": true, "the": true, "to": true, "with": true,
}

// HashingEmbedder is an offline, deterministic embedder. Each token maps to
// a sparse signed vector via feature hashing, so texts sharing words point
// in similar directions. It needs no network and no model weights.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder returns an embedder producing dims-sized token vectors.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Embed returns one row per token. Text with no tokens yields a single zero row.
func (h *HashingEmbedder) Embed(_ context.Context, text string) ([][]float32, error) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return [][]float32{make([]float32, h.dims)}, nil
	}
	rows := make([][]float32, len(tokens))
	for i, tok := range tokens {
		rows[i] = h.tokenVector(tok)
	}
	return rows, nil
}

func (h *HashingEmbedder) tokenVector(tok string) []float32 {
	v := make([]float32, h.dims)
	for k := 0; k < hashesPerToken; k++ {
		f := fnv.New64a()
		f.Write([]byte{byte(k)})
		f.Write([]byte(tok))
		sum := f.Sum64()
		idx := int(sum % uint64(h.dims))
		if sum>>63 == 1 {
			v[idx] -= 1
		} else {
			v[idx] += 1
		}
	}
	return v
}

// Tokenize lowercases, folds accents, splits on anything that is not a
// letter or digit, and drops stopwords.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(filter.Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if !stopwords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
