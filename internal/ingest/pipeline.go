// Package ingest orchestrates document ingestion: parse -> chunk -> embed ->
// index, with the registry updated around the pipeline so partial failures
// stay observable.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voicekb/voicerag/internal/registry"
)

var (
	// ErrEmptyDocument means parsing produced no usable text.
	ErrEmptyDocument = errors.New("document is empty or could not be parsed")
	// ErrNoChunks means chunk filtering dropped everything.
	ErrNoChunks = errors.New("no valid chunks generated from document")
)

// Parser converts raw bytes to plain text.
type Parser interface {
	Parse(ctx context.Context, content []byte, filename string) (string, error)
}

// Chunker splits text into embeddable segments.
type Chunker interface {
	Chunk(text string) []string
}

// Embedder maps texts to vectors, order-preserving.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex stores and deletes chunk vectors.
type VectorIndex interface {
	UpsertChunks(ctx context.Context, texts []string, vectors [][]float32, documentID, filename string) (int, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Registry persists document metadata.
type Registry interface {
	Save(ctx context.Context, doc *registry.Document) error
	Delete(ctx context.Context, id string) error
}

// Pipeline composes the ingestion stages. All collaborators are injected;
// the pipeline holds no hidden state and ingestion jobs may run concurrently.
type Pipeline struct {
	parser   Parser
	chunker  Chunker
	embedder Embedder
	index    VectorIndex
	registry Registry
	logger   *slog.Logger
}

// NewPipeline creates an ingestion pipeline with the given components.
func NewPipeline(parser Parser, chunker Chunker, embedder Embedder, index VectorIndex, reg Registry, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		parser:   parser,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		registry: reg,
		logger:   logger,
	}
}

// Ingest processes one uploaded document end to end. The returned Document
// always reflects the final registry state: ready on success, failed (with
// the captured message) alongside a non-nil error otherwise.
//
// The processing record is written before any heavy work; the terminal
// record is written exactly once. A failed document is never resumed; the
// caller re-ingests under a new id.
func (p *Pipeline) Ingest(ctx context.Context, filename string, content []byte) (*registry.Document, error) {
	doc := &registry.Document{
		ID:        uuid.New().String(),
		Filename:  filename,
		Status:    registry.StatusProcessing,
		FileSize:  int64(len(content)),
		CreatedAt: time.Now().UTC(),
	}
	if err := p.registry.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving processing record: %w", err)
	}

	count, err := p.process(ctx, doc, content)
	if err != nil {
		doc.Status = registry.StatusFailed
		doc.Error = err.Error()
		// Best-effort: never mask the pipeline error with a registry one.
		if saveErr := p.registry.Save(ctx, doc); saveErr != nil {
			p.logger.Error("Failed to record ingestion failure", "doc_id", doc.ID, "error", saveErr)
		}
		p.logger.Error("Ingestion failed", "doc_id", doc.ID, "filename", filename, "error", err)
		return doc, fmt.Errorf("ingestion failed: %w", err)
	}

	doc.Status = registry.StatusReady
	doc.Chunks = count
	if err := p.registry.Save(ctx, doc); err != nil {
		return doc, fmt.Errorf("saving ready record: %w", err)
	}

	p.logger.Info("Document ingested", "doc_id", doc.ID, "filename", filename, "chunks", count)
	return doc, nil
}

// process runs stages (b)-(e): parse, chunk, embed, index. Stages execute
// strictly in sequence; the first error aborts.
func (p *Pipeline) process(ctx context.Context, doc *registry.Document, content []byte) (int, error) {
	text, err := p.parser.Parse(ctx, content, doc.Filename)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return 0, ErrEmptyDocument
	}

	chunks := p.chunker.Chunk(text)
	if len(chunks) == 0 {
		return 0, ErrNoChunks
	}
	p.logger.Debug("Chunked document", "doc_id", doc.ID, "chunks", len(chunks))

	vectors, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embeddings: %w", err)
	}

	count, err := p.index.UpsertChunks(ctx, chunks, vectors, doc.ID, doc.Filename)
	if err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	return count, nil
}

// Delete removes a document's vector points, then its registry record.
// Vector deletion failure keeps the registry record so the document never
// points at nothing; the reverse (orphaned vectors) is tolerable garbage.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	if err := p.index.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	if err := p.registry.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting registry record: %w", err)
	}
	p.logger.Info("Document deleted", "doc_id", id)
	return nil
}
