package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voicekb/voicerag/internal/parser"
	"github.com/voicekb/voicerag/internal/registry"
	"github.com/voicekb/voicerag/internal/storage"
)

// maxUploadBytes bounds multipart memory use per request.
const maxUploadBytes = 32 << 20

// Ingestor runs the ingestion pipeline and document removal.
type Ingestor interface {
	Ingest(ctx context.Context, filename string, content []byte) (*registry.Document, error)
	Delete(ctx context.Context, id string) error
}

// Retriever answers similarity queries.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]storage.RetrievedChunk, error)
}

// DocumentStore is the read side of the registry needed by the handlers.
type DocumentStore interface {
	ListAll(ctx context.Context) ([]*registry.Document, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// handleIngest implements POST /ingest: multipart upload -> pipeline.
// 201 with the document record, 400 for bad/unsupported uploads, 500 with
// the pipeline message on ingestion failure.
func handleIngest(ingestor Ingestor, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multipart upload")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No file provided")
			return
		}
		defer file.Close()

		if header.Filename == "" {
			writeError(w, http.StatusBadRequest, "No filename provided")
			return
		}
		if !parser.Supported(header.Filename) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Unsupported file type. Supported: %s", strings.Join(parser.Extensions(), ", ")))
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read upload")
			return
		}

		doc, err := ingestor.Ingest(r.Context(), header.Filename, content)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Ingestion failed: %s", err))
			return
		}

		writeJSON(w, http.StatusCreated, doc)
	}
}

// handleListDocuments implements GET /documents.
func handleListDocuments(store DocumentStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := store.ListAll(r.Context())
		if err != nil {
			logger.Error("Listing documents failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list documents")
			return
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

// handleDeleteDocument implements DELETE /documents/{id}: 204 on success,
// 404 for unknown ids, 500 when deletion fails (registry record retained).
func handleDeleteDocument(ingestor Ingestor, store DocumentStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		exists, err := store.Exists(r.Context(), id)
		if err != nil {
			logger.Error("Existence check failed", "doc_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to check document")
			return
		}
		if !exists {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}

		if err := ingestor.Delete(r.Context(), id); err != nil {
			logger.Error("Deletion failed", "doc_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Deletion failed: %s", err))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// handleRetrieve implements POST /retrieve: 400 on a blank query, 500 on
// internal failure, otherwise the ranked fragments.
func handleRetrieve(retriever Retriever, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RetrieveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			writeError(w, http.StatusBadRequest, "Query cannot be empty")
			return
		}

		chunks, err := retriever.Retrieve(r.Context(), req.Query, req.TopK)
		if err != nil {
			logger.Error("Retrieval failed", "query", req.Query, "error", err)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Retrieval failed: %s", err))
			return
		}

		writeJSON(w, http.StatusOK, RetrieveResponse{
			Query:      req.Query,
			Chunks:     chunks,
			TotalFound: len(chunks),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
