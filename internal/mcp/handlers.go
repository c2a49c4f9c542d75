package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// makeSearchHandler creates the search_knowledge tool handler. The retrieval
// service already applies the score threshold and ranking, so the handler only
// maps results onto the tool output shape.
func makeSearchHandler(retriever Retriever) func(
	context.Context, *mcp.CallToolRequest, SearchKnowledgeInput,
) (*mcp.CallToolResult, SearchKnowledgeOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchKnowledgeInput) (
		*mcp.CallToolResult, SearchKnowledgeOutput, error,
	) {
		chunks, err := retriever.Retrieve(ctx, input.Query, input.TopK)
		if err != nil {
			return nil, SearchKnowledgeOutput{}, fmt.Errorf("search failed: %w", err)
		}

		results := make([]KnowledgeResult, 0, len(chunks))
		for _, chunk := range chunks {
			results = append(results, KnowledgeResult{
				Text:       chunk.Text,
				Score:      chunk.Score,
				DocumentID: chunk.DocumentID,
				Filename:   chunk.Filename,
			})
		}

		if len(results) == 0 {
			return nil, SearchKnowledgeOutput{
				Results: []KnowledgeResult{},
				Message: "No matching fragments found. Try broader search terms.",
			}, nil
		}

		return nil, SearchKnowledgeOutput{Results: results}, nil
	}
}

// makeListHandler creates the list_documents tool handler.
func makeListHandler(documents DocumentLister) func(
	context.Context, *mcp.CallToolRequest, ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListDocumentsInput) (
		*mcp.CallToolResult, ListDocumentsOutput, error,
	) {
		docs, err := documents.ListAll(ctx)
		if err != nil {
			return nil, ListDocumentsOutput{}, fmt.Errorf("failed to list documents: %w", err)
		}

		entries := make([]DocumentEntry, 0, len(docs))
		for _, doc := range docs {
			entries = append(entries, DocumentEntry{
				ID:        doc.ID,
				Filename:  doc.Filename,
				Status:    string(doc.Status),
				Chunks:    doc.Chunks,
				CreatedAt: doc.CreatedAt,
			})
		}

		return nil, ListDocumentsOutput{
			Documents: entries,
			Count:     len(entries),
		}, nil
	}
}
