// Package config holds environment-driven settings for the RAG server and
// the voice agent worker. Load .env via godotenv in main before calling Load.
package config

import (
	"fmt"
	"os"
)

// Settings captures every tunable the services read from the environment.
// Defaults match a local single-node deployment.
type Settings struct {
	// Qdrant
	QdrantHost string
	QdrantPort int
	Collection string

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	TopK           int
	ScoreThreshold float64

	// Embedding
	EmbeddingModel      string
	EmbeddingDimensions int

	// Registry
	DataDir string

	// Server
	Port string

	// Agent
	RAGServerURL string
	APIServerURL string
	ObserverURL  string
	LLMModel     string
}

// Load reads settings from the environment, applying defaults for anything
// unset. It never fails; required credentials (OPENAI_API_KEY) are validated
// by the clients that use them.
func Load() *Settings {
	return &Settings{
		QdrantHost: getEnv("QDRANT_HOST", "localhost"),
		QdrantPort: getEnvInt("QDRANT_PORT", 6334),
		Collection: getEnv("QDRANT_COLLECTION", "voice_ai_docs"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 800),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		TopK:           getEnvInt("TOP_K", 5),
		ScoreThreshold: getEnvFloat("SCORE_THRESHOLD", 0.15),

		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-large"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 3072),

		DataDir: getEnv("DATA_DIR", ""),

		Port: getEnv("RAG_PORT", "8001"),

		RAGServerURL: getEnv("RAG_SERVER_URL", "http://localhost:8001"),
		APIServerURL: getEnv("API_SERVER_URL", "http://localhost:3000"),
		ObserverURL:  getEnv("OBSERVER_WS_URL", ""),
		LLMModel:     getEnv("LLM_MODEL", "gpt-4o"),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		var f float64
		if _, err := fmt.Sscanf(v, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}
