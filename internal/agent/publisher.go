package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/voicekb/voicerag/internal/storage"
)

// DataChannel delivers raw payloads to all session participants. Implemented
// by WSChannel for real sessions and NoopChannel when no observer is wired.
type DataChannel interface {
	Publish(ctx context.Context, payload []byte) error
}

// TranscriptMessage mirrors one side of the exchange to the observer UI.
type TranscriptMessage struct {
	Type    string `json:"type"`
	Sender  string `json:"sender"`
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}

// SourcesMessage tells the observer UI which fragments informed a response.
type SourcesMessage struct {
	Type    string                   `json:"type"`
	Sources []storage.RetrievedChunk `json:"sources"`
	Query   string                   `json:"query"`
}

// NewUserTranscript builds the final user-side transcript message.
func NewUserTranscript(text string) TranscriptMessage {
	return TranscriptMessage{Type: "transcript", Sender: "user", Text: text, IsFinal: true}
}

// NewAgentTranscript builds the final agent-side transcript message.
func NewAgentTranscript(text string) TranscriptMessage {
	return TranscriptMessage{Type: "transcript", Sender: "agent", Text: text, IsFinal: true}
}

// NewSources builds the rag_sources message for a query.
func NewSources(chunks []storage.RetrievedChunk, query string) SourcesMessage {
	return SourcesMessage{Type: "rag_sources", Sources: chunks, Query: query}
}

const (
	defaultQueueSize = 64
	publishTimeout   = 5 * time.Second
)

// Publisher is a best-effort, ordered sender over a DataChannel. Publish is a
// non-blocking enqueue; a single goroutine drains the queue so messages reach
// the channel in enqueue order. Failures are logged, never surfaced.
type Publisher struct {
	channel DataChannel
	queue   chan []byte
	logger  *slog.Logger
	done    chan struct{}

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewPublisher starts the drain goroutine. queueSize <= 0 uses the default.
func NewPublisher(channel DataChannel, queueSize int, logger *slog.Logger) *Publisher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Publisher{
		channel: channel,
		queue:   make(chan []byte, queueSize),
		logger:  logger,
		done:    make(chan struct{}),
	}
	go p.drain()
	return p
}

func (p *Publisher) drain() {
	defer close(p.done)
	for payload := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := p.channel.Publish(ctx, payload); err != nil {
			p.logger.Error("Observer publish failed", "error", err)
		}
		cancel()
	}
}

// Publish enqueues a message without blocking the caller. When the queue is
// full the message is dropped and logged.
func (p *Publisher) Publish(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("Observer message marshal failed", "error", err)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("Observer publisher closed, dropping message")
		return
	}

	select {
	case p.queue <- payload:
	default:
		p.logger.Warn("Observer queue full, dropping message")
	}
}

// Close stops accepting messages and waits for the queue to drain. Safe to
// call more than once.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
		<-p.done
	})
}
