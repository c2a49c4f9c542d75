// Package embedding maps text to fixed-dimension vectors via the OpenAI API.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

// DefaultBatchSize is the number of inputs sent per embedding request.
// OpenAI accepts up to 2048, but 100 keeps token-per-minute pressure low.
const DefaultBatchSize = 100

// embeddingAPI is the raw provider call, narrowed so tests can substitute a
// fake and count requests.
type embeddingAPI interface {
	createEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder generates embeddings in order-preserving sub-batches. It holds no
// per-call state and is safe for concurrent use.
type Embedder struct {
	api        embeddingAPI
	batchSize  int
	dimensions int
}

// NewEmbedder creates an Embedder over the given client. If batchSize is 0,
// DefaultBatchSize is used. Dimensions is forwarded to the API so every
// vector matches the index's configured width.
func NewEmbedder(client *Client, model string, dimensions, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{
		api:        &openaiAPI{client: client.Client(), model: model, dimensions: dimensions},
		batchSize:  batchSize,
		dimensions: dimensions,
	}
}

// Dimensions returns the configured vector width.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// EmbedBatch embeds texts, splitting into sub-batches of at most batchSize
// and concatenating results in input order. An empty input returns an empty
// slice without a network round trip. Failure of any sub-batch fails the
// whole call; there is no partial success.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))

		vectors, err := e.embedBatchWithRetry(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, vectors...)
	}

	return all, nil
}

// EmbedQuery embeds a single query string.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// embedBatchWithRetry embeds one sub-batch, retrying rate-limit errors
// (HTTP 429) with exponential backoff. Other errors fail immediately.
func (e *Embedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		result, err := e.api.createEmbeddings(ctx, texts)
		if err != nil {
			if isRateLimitError(err) {
				return err // Will retry with backoff
			}
			return backoff.Permanent(err)
		}
		if len(result) != len(texts) {
			return backoff.Permanent(fmt.Errorf("provider returned %d embeddings for %d inputs", len(result), len(texts)))
		}
		vectors = result
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	return vectors, err
}

// openaiAPI implements embeddingAPI against the real OpenAI endpoint.
type openaiAPI struct {
	client     *openai.Client
	model      string
	dimensions int
}

func (a *openaiAPI) createEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:      openai.EmbeddingModel(a.model),
		Dimensions: openai.Int(int64(a.dimensions)),
	})
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = toFloat32(data.Embedding)
	}
	return vectors, nil
}

// isRateLimitError checks if the error is a rate limit error (HTTP 429).
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 converts []float64 to []float32.
// OpenAI API returns float64, but the index stores float32.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
