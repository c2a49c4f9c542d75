package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/voicekb/voicerag/internal/api"
	"github.com/voicekb/voicerag/internal/storage"
)

// RAGClient calls the retrieval endpoint of the rag-server over HTTP. The
// underlying client pools connections across utterances; Close releases them
// at shutdown. Transport failures are returned to the caller, which decides
// how to degrade.
type RAGClient struct {
	baseURL   string
	http      *http.Client
	logger    *slog.Logger
	closeOnce sync.Once
}

func NewRAGClient(baseURL string, logger *slog.Logger) *RAGClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &RAGClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Retrieve implements the Retriever interface over POST /retrieve.
func (c *RAGClient) Retrieve(ctx context.Context, query string, topK int) ([]storage.RetrievedChunk, error) {
	body, err := json.Marshal(api.RetrieveRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("encode retrieve request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/retrieve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build retrieve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call rag server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rag server returned status %d", resp.StatusCode)
	}

	var result api.RetrieveResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode retrieve response: %w", err)
	}

	c.logger.Debug("Context retrieved", "query", truncate(query, 80), "chunks", len(result.Chunks))
	return result.Chunks, nil
}

// Close releases pooled connections. Safe to call more than once.
func (c *RAGClient) Close() {
	c.closeOnce.Do(func() {
		c.http.CloseIdleConnections()
	})
}
