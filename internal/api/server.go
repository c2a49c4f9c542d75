package api

import (
	"log/slog"
	"net/http"
)

// Config holds the handler dependencies, constructed once at startup and
// injected (no package-level singletons).
type Config struct {
	Ingestor  Ingestor
	Retriever Retriever
	Documents DocumentStore
	Health    HealthChecker
	Logger    *slog.Logger
}

// NewHandler builds the API mux. Extra handlers (e.g. the MCP transport)
// can be mounted on top by wrapping the returned mux.
func NewHandler(cfg *Config) *http.ServeMux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest", handleIngest(cfg.Ingestor, logger))
	mux.HandleFunc("GET /documents", handleListDocuments(cfg.Documents, logger))
	mux.HandleFunc("DELETE /documents/{id}", handleDeleteDocument(cfg.Ingestor, cfg.Documents, logger))
	mux.HandleFunc("POST /retrieve", handleRetrieve(cfg.Retriever, logger))
	mux.HandleFunc("GET /health", NewHealthHandler(cfg.Health))

	return mux
}

// WithCORS wraps a handler with permissive CORS. The server is an internal
// service called only by the gateway; credentials are not involved, so the
// wildcard origin is safe.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
