package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/voicekb/voicerag/internal/registry"
	"github.com/voicekb/voicerag/internal/storage"
)

// Retriever answers similarity queries against the knowledge base.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]storage.RetrievedChunk, error)
}

// DocumentLister is the read side of the document registry.
type DocumentLister interface {
	ListAll(ctx context.Context) ([]*registry.Document, error)
}

// Server wraps the MCP server with dependencies.
type Server struct {
	server    *mcp.Server
	retriever Retriever
	documents DocumentLister
}

// Config holds server dependencies.
type Config struct {
	Retriever Retriever
	Documents DocumentLister
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "voicerag-knowledge-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the voice assistant knowledge base semantically. Returns the most relevant text fragments with similarity scores and source documents.",
	}, makeSearchHandler(cfg.Retriever))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List every document registered in the knowledge base with its ingestion status and chunk count.",
	}, makeListHandler(cfg.Documents))

	return &Server{
		server:    server,
		retriever: cfg.Retriever,
		documents: cfg.Documents,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
