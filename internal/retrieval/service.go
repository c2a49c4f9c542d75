// Package retrieval answers queries: embed the query, search the vector
// index, return ranked fragments.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/voicekb/voicerag/internal/storage"
)

// QueryEmbedder embeds a single query string.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher performs similarity search over the index.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int, scoreThreshold float64) ([]storage.RetrievedChunk, error)
}

// Service composes embedding and vector search with the configured score
// threshold.
type Service struct {
	embedder       QueryEmbedder
	index          Searcher
	defaultTopK    int
	scoreThreshold float64
	logger         *slog.Logger
}

// NewService creates a retrieval service.
func NewService(embedder QueryEmbedder, index Searcher, defaultTopK int, scoreThreshold float64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		embedder:       embedder,
		index:          index,
		defaultTopK:    defaultTopK,
		scoreThreshold: scoreThreshold,
		logger:         logger,
	}
}

// Retrieve returns at most topK fragments above the score threshold, best
// first. An empty result is a non-nil empty slice; downstream failures
// propagate as errors so callers choose their own fallback.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) ([]storage.RetrievedChunk, error) {
	if topK <= 0 {
		topK = s.defaultTopK
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := s.index.Search(ctx, vector, topK, s.scoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if chunks == nil {
		chunks = []storage.RetrievedChunk{}
	}

	topScore := 0.0
	if len(chunks) > 0 {
		topScore = chunks[0].Score
	}
	s.logger.Info("Retrieved context", "query", truncate(query, 100), "results", len(chunks), "top_score", topScore)

	return chunks, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
