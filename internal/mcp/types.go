// Package mcp exposes the knowledge base to MCP clients as tools.
package mcp

import "time"

// SearchKnowledgeInput defines the input parameters for the search_knowledge tool.
type SearchKnowledgeInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query for finding relevant knowledge base fragments"`
	// TopK is the maximum number of fragments to return.
	TopK int `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of fragments to return"`
}

// SearchKnowledgeOutput contains the ranked fragments.
type SearchKnowledgeOutput struct {
	// Results is the list of matching fragments, best first.
	Results []KnowledgeResult `json:"results"`
	// Message provides informational context (e.g., "No matching fragments found").
	Message string `json:"message,omitempty"`
}

// KnowledgeResult is a single fragment match from semantic search.
type KnowledgeResult struct {
	// Text is the fragment content.
	Text string `json:"text"`
	// Score is the cosine similarity score.
	Score float64 `json:"score"`
	// DocumentID identifies the source document.
	DocumentID string `json:"document_id"`
	// Filename is the source document's original filename.
	Filename string `json:"filename"`
}

// ListDocumentsInput defines the input parameters for the list_documents tool.
// This tool takes no parameters and lists every registered document.
type ListDocumentsInput struct {
	// No input parameters required
}

// ListDocumentsOutput contains the registered documents.
type ListDocumentsOutput struct {
	// Documents lists all registered documents in insertion order.
	Documents []DocumentEntry `json:"documents"`
	// Count is the total number of documents.
	Count int `json:"count"`
}

// DocumentEntry is one registered document.
type DocumentEntry struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	Chunks    int       `json:"chunks"`
	CreatedAt time.Time `json:"created_at"`
}
