package storage

// RetrievedChunk is a similarity-search hit: chunk text plus document
// provenance and score. Ephemeral; never persisted outside Qdrant.
type RetrievedChunk struct {
	ChunkID    string  `json:"chunk_id"`
	Text       string  `json:"text"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}
