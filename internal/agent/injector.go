package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/voicekb/voicerag/internal/storage"
)

const (
	// injectTopK bounds how many fragments are merged into a turn. Voice
	// responses stay short, so fewer fragments than the API default.
	injectTopK = 3

	// minUtteranceRunes filters out STT noise like "a" or a stray space.
	minUtteranceRunes = 2

	retrieveTimeout = 10 * time.Second
)

// Retriever answers similarity queries. Implemented by RAGClient and, in
// process, by the retrieval service.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]storage.RetrievedChunk, error)
}

// Observer is the best-effort publish side of the observer channel.
type Observer interface {
	Publish(v any)
}

// Injector merges retrieved knowledge into completed user turns and mirrors
// both sides of the exchange to the observer channel. Retrieval problems
// degrade to an unmodified turn; they never fail the conversation.
type Injector struct {
	retriever Retriever
	observer  Observer
	logger    *slog.Logger
}

func NewInjector(retriever Retriever, observer Observer, logger *slog.Logger) *Injector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Injector{
		retriever: retriever,
		observer:  observer,
		logger:    logger,
	}
}

// OnUserTurnCompleted runs right before the response generator consumes the
// turn. It publishes the user transcript, retrieves context with a bounded
// timeout, and on a non-empty result rewrites the turn and publishes the
// sources. The turn is left untouched on failure or empty retrieval.
func (inj *Injector) OnUserTurnCompleted(ctx context.Context, turn *Turn) {
	userText := strings.TrimSpace(turn.Content.Text())
	if utf8.RuneCountInString(userText) < minUtteranceRunes {
		return
	}

	inj.logger.Info("User turn", "text", truncate(userText, 80))
	inj.observer.Publish(NewUserTranscript(userText))

	rctx, cancel := context.WithTimeout(ctx, retrieveTimeout)
	defer cancel()

	chunks, err := inj.retriever.Retrieve(rctx, userText, injectTopK)
	if err != nil {
		inj.logger.Error("Context retrieval failed, continuing without context", "error", err)
		return
	}
	if len(chunks) == 0 {
		inj.logger.Debug("No relevant fragments for turn")
		return
	}

	inj.logger.Info("Context retrieved", "fragments", len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	turn.Rewrite(fmt.Sprintf(
		"--- KNOWLEDGE BASE CONTEXT ---\n%s\n----------------------------\n\nUser Question: %s",
		strings.Join(texts, "\n"), userText,
	))

	inj.observer.Publish(NewSources(chunks, userText))
}

// truncate shortens s to at most n runes for log output without splitting a
// multi-byte character.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
