package agent

import (
	"context"
	"fmt"
	"log/slog"
)

// ResponseGenerator streams the assistant's reply for a (possibly rewritten)
// turn. Implemented by LLM.
type ResponseGenerator interface {
	Generate(ctx context.Context, systemPrompt string, turn *Turn) (<-chan string, error)
}

// AudioSink consumes response text pieces for synthesis. The console dev mode
// prints them; a real deployment hands them to a TTS engine.
type AudioSink interface {
	Write(ctx context.Context, piece string) error
}

// Session runs the conversational loop, one turn at a time in completion
// order.
type Session struct {
	injector     *Injector
	generator    ResponseGenerator
	sink         AudioSink
	systemPrompt string
	logger       *slog.Logger
}

func NewSession(injector *Injector, generator ResponseGenerator, sink AudioSink, systemPrompt string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		injector:     injector,
		generator:    generator,
		sink:         sink,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// ProcessTurn handles one completed user utterance end to end: context
// injection, response generation, and forwarding every streamed piece to the
// audio sink through the transcript tee. A sink failure stops synthesis but
// the remaining stream is still drained so the agent transcript is published.
func (s *Session) ProcessTurn(ctx context.Context, userText string) error {
	turn := &Turn{Role: RoleUser, Content: PlainContent(userText)}
	s.injector.OnUserTurnCompleted(ctx, turn)

	pieces, err := s.generator.Generate(ctx, s.systemPrompt, turn)
	if err != nil {
		return fmt.Errorf("generate response: %w", err)
	}

	var sinkErr error
	for piece := range s.injector.TeeResponseText(pieces) {
		if sinkErr != nil {
			continue
		}
		if err := s.sink.Write(ctx, piece); err != nil {
			sinkErr = fmt.Errorf("audio sink: %w", err)
			s.logger.Error("Audio sink write failed", "error", err)
		}
	}
	return sinkErr
}
