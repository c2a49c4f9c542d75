// Package api exposes the ingestion and retrieval HTTP endpoints.
package api

import "github.com/voicekb/voicerag/internal/storage"

// RetrieveRequest is the body of POST /retrieve.
type RetrieveRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// RetrieveResponse is the body of a successful POST /retrieve.
type RetrieveResponse struct {
	Query      string                   `json:"query"`
	Chunks     []storage.RetrievedChunk `json:"chunks"`
	TotalFound int                      `json:"total_found"`
}

// errorResponse carries a human-readable failure message.
type errorResponse struct {
	Detail string `json:"detail"`
}
