package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// DefaultPrompt is the instruction set used when the API server does not
// provide a custom one.
const DefaultPrompt = `You are a helpful AI assistant that answers questions using the context provided from uploaded documents.

When answering:
- Always reference specific information from the provided context
- If the context doesn't contain relevant information, say so honestly
- Be concise and conversational, you're speaking, not writing
- Keep responses under 3 sentences unless asked for more detail`

const promptFetchTimeout = 5 * time.Second

type promptResponse struct {
	Prompt string `json:"prompt"`
}

// FetchSystemPrompt loads the system prompt from GET {apiServerURL}/api/prompt.
// Any failure falls back to DefaultPrompt; an unreachable API server must not
// keep the agent from starting.
func FetchSystemPrompt(ctx context.Context, apiServerURL string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	fctx, cancel := context.WithTimeout(ctx, promptFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fctx, http.MethodGet, apiServerURL+"/api/prompt", nil)
	if err != nil {
		logger.Warn("Could not build prompt request, using default", "error", err)
		return DefaultPrompt
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Warn("Could not fetch system prompt, using default", "error", err)
		return DefaultPrompt
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Prompt endpoint returned error, using default", "status", resp.StatusCode)
		return DefaultPrompt
	}

	var body promptResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Prompt == "" {
		logger.Warn("Prompt response unusable, using default")
		return DefaultPrompt
	}

	logger.Info("Loaded custom system prompt")
	return body.Prompt
}
