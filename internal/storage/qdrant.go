// Package storage implements the vector index on Qdrant. Points carry a
// single cosine vector and a payload of (text, document_id, filename,
// chunk_index); deletion is bulk by document id.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// upsertBatchSize bounds points per upsert request.
const upsertBatchSize = 100

// Index wraps the Qdrant client with connection management and health checks.
type Index struct {
	client     *qdrant.Client
	collection string
	dimensions int
}

// NewIndex creates a Qdrant client and validates connectivity with retry,
// failing fast if the server stays unreachable.
func NewIndex(host string, port int, collection string, dimensions int) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	index := &Index{
		client:     client,
		collection: collection,
		dimensions: dimensions,
	}

	if err := index.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return index, nil
}

// healthCheckWithRetry performs health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Index) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(exponentialBackoff, ctx))
}

// Health performs a single health check against Qdrant.
func (s *Index) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the backing collection if absent, with cosine
// distance and the configured dimensionality. Idempotent: a lost
// check-then-create race surfaces as "already exists" and is treated as
// success.
func (s *Index) EnsureCollection(ctx context.Context) error {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, name := range collections {
		if name == s.collection {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// UpsertChunks stores one point per (text, vector) pair, tagged with the
// owning document. Point ids are freshly generated UUIDs, never derived from
// content; re-ingesting a document requires deleting its old points first.
// Returns the number of points written.
func (s *Index) UpsertChunks(ctx context.Context, texts []string, vectors [][]float32, documentID, filename string) (int, error) {
	if len(texts) != len(vectors) {
		return 0, fmt.Errorf("got %d texts but %d vectors", len(texts), len(vectors))
	}
	for i, vector := range vectors {
		if len(vector) != s.dimensions {
			return 0, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(vector), s.dimensions)
		}
	}

	points := make([]*qdrant.PointStruct, len(texts))
	for i, text := range texts {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":        text,
				"document_id": documentID,
				"filename":    filename,
				"chunk_index": i,
			}),
		}
	}

	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		if err := s.upsertWithRetry(ctx, points[start:end]); err != nil {
			return 0, fmt.Errorf("failed to upsert batch %d-%d: %w", start, end, err)
		}
	}

	return len(points), nil
}

// upsertWithRetry performs an upsert with exponential backoff.
func (s *Index) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         points,
		})
		return err
	}, backoff.WithContext(exponentialBackoff, ctx))
}

// Search returns at most topK chunks with similarity >= scoreThreshold,
// ordered by descending similarity. The threshold is applied server-side.
func (s *Index) Search(ctx context.Context, vector []float32, topK int, scoreThreshold float64) ([]RetrievedChunk, error) {
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), s.dimensions)
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		ScoreThreshold: qdrant.PtrOf(float32(scoreThreshold)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	chunks := make([]RetrievedChunk, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		chunks = append(chunks, RetrievedChunk{
			ChunkID:    result.Id.GetUuid(),
			Text:       payload["text"].GetStringValue(),
			DocumentID: payload["document_id"].GetStringValue(),
			Filename:   payload["filename"].GetStringValue(),
			ChunkIndex: int(payload["chunk_index"].GetIntegerValue()),
			Score:      float64(result.Score),
		})
	}

	return chunks, nil
}

// DeleteByDocument removes every point tagged with the document id. Qdrant
// applies the filter delete atomically, so searches never observe a partial
// deletion.
func (s *Index) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentID),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to delete chunks for document %s: %w", documentID, err)
	}
	return nil
}

// Close closes the Qdrant client connection. Safe to call more than once.
func (s *Index) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
