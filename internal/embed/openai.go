package embed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/amishk599/jobmatch/internal/model"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "text-embedding-3-small"

// Ensure OpenAIEmbedder implements model.Embedder.
var _ model.Embedder = (*OpenAIEmbedder)(nil)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint. The service
// returns one pooled vector per input, surfaced as a single-row matrix.
type OpenAIEmbedder struct {
	client     openai.Client
	modelName  string
	dimensions int
}

// NewOpenAIEmbedder builds a client for baseURL (empty selects the OpenAI API).
// dimensions of zero keeps the model's native size.
func NewOpenAIEmbedder(baseURL, apiKey, modelName string, dimensions int, httpClient *http.Client) *OpenAIEmbedder {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	return &OpenAIEmbedder{
		client:     openai.NewClient(opts...),
		modelName:  modelName,
		dimensions: dimensions,
	}
}

// Embed returns the embedding of text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: e.modelName,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", model.ErrEmbedding)
	}

	src := resp.Data[0].Embedding
	row := make([]float32, len(src))
	for i, v := range src {
		row[i] = float32(v)
	}
	return [][]float32{row}, nil
}
