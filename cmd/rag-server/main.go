// Package main provides the RAG server entry point: ingestion, retrieval,
// document management, and the MCP tool surface over one HTTP listener.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voicekb/voicerag/internal/api"
	"github.com/voicekb/voicerag/internal/chunker"
	"github.com/voicekb/voicerag/internal/config"
	"github.com/voicekb/voicerag/internal/embedding"
	"github.com/voicekb/voicerag/internal/ingest"
	mcpserver "github.com/voicekb/voicerag/internal/mcp"
	"github.com/voicekb/voicerag/internal/parser"
	"github.com/voicekb/voicerag/internal/registry"
	"github.com/voicekb/voicerag/internal/retrieval"
	"github.com/voicekb/voicerag/internal/storage"
)

func main() {
	// Load .env if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.Load()

	store, err := registry.NewStore(cfg.DataDir, logger)
	if err != nil {
		logger.Error("Failed to open document registry", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	index, err := storage.NewIndex(cfg.QdrantHost, cfg.QdrantPort, cfg.Collection, cfg.EmbeddingDimensions)
	if err != nil {
		logger.Error("Failed to connect to Qdrant", "host", cfg.QdrantHost, "port", cfg.QdrantPort, "error", err)
		os.Exit(1)
	}
	defer index.Close()

	if err := index.EnsureCollection(ctx); err != nil {
		logger.Error("Failed to ensure collection", "collection", cfg.Collection, "error", err)
		os.Exit(1)
	}

	embeddingClient, err := embedding.NewClient()
	if err != nil {
		logger.Error("Failed to create embedding client", "error", err)
		os.Exit(1)
	}
	embedder := embedding.NewEmbedder(embeddingClient, cfg.EmbeddingModel, cfg.EmbeddingDimensions, 0)

	pipeline := ingest.NewPipeline(
		parser.New(logger),
		chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		index,
		store,
		logger,
	)
	retriever := retrieval.NewService(embedder, index, cfg.TopK, cfg.ScoreThreshold, logger)

	mux := api.NewHandler(&api.Config{
		Ingestor:  pipeline,
		Retriever: retriever,
		Documents: store,
		Health:    index,
		Logger:    logger,
	})

	tools := mcpserver.NewServer(&mcpserver.Config{
		Retriever: retriever,
		Documents: store,
	})
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(tools, nil))

	server := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: api.WithCORS(mux),
	}

	go func() {
		logger.Info("RAG server listening", "addr", server.Addr, "collection", cfg.Collection)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("RAG server stopped")
}
