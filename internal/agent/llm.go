package agent

import (
	"context"
	"log/slog"

	"github.com/openai/openai-go"
)

// LLM produces streamed chat responses for rewritten turns.
type LLM struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewLLM(client *openai.Client, model string, logger *slog.Logger) *LLM {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLM{client: client, model: model, logger: logger}
}

// Generate streams the model's response text as incremental pieces. The
// returned channel closes when the stream is exhausted or the context is
// cancelled. A mid-stream transport error closes the channel early and is
// logged; the pieces already delivered remain valid.
func (l *LLM) Generate(ctx context.Context, systemPrompt string, turn *Turn) (<-chan string, error) {
	stream := l.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(l.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(turn.Content.Text()),
		},
	})

	out := make(chan string)
	go func() {
		defer close(out)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case out <- delta:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			l.logger.Error("Response stream failed", "error", err)
		}
	}()
	return out, nil
}
