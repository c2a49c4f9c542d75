package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (r *recordingChannel) Publish(_ context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingChannel) all() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.payloads...)
}

func TestPublisher_DeliversInOrder(t *testing.T) {
	channel := &recordingChannel{}
	publisher := NewPublisher(channel, 8, testLogger())

	publisher.Publish(NewUserTranscript("first"))
	publisher.Publish(NewSources(nil, "first"))
	publisher.Publish(NewAgentTranscript("second"))
	publisher.Close()

	payloads := channel.all()
	require.Len(t, payloads, 3)

	var first TranscriptMessage
	require.NoError(t, json.Unmarshal(payloads[0], &first))
	assert.Equal(t, "transcript", first.Type)
	assert.Equal(t, "user", first.Sender)
	assert.Equal(t, "first", first.Text)
	assert.True(t, first.IsFinal)

	var second SourcesMessage
	require.NoError(t, json.Unmarshal(payloads[1], &second))
	assert.Equal(t, "rag_sources", second.Type)

	var third TranscriptMessage
	require.NoError(t, json.Unmarshal(payloads[2], &third))
	assert.Equal(t, "agent", third.Sender)
}

func TestPublisher_ChannelFailureIsSwallowed(t *testing.T) {
	channel := &recordingChannel{err: errors.New("gateway gone")}
	publisher := NewPublisher(channel, 8, testLogger())

	publisher.Publish(NewUserTranscript("hello"))
	publisher.Publish(NewAgentTranscript("world"))
	publisher.Close()

	assert.Empty(t, channel.all())
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	publisher := NewPublisher(&recordingChannel{}, 8, testLogger())
	publisher.Close()
	publisher.Close()
}

func TestPublisher_PublishAfterCloseIsDropped(t *testing.T) {
	channel := &recordingChannel{}
	publisher := NewPublisher(channel, 8, testLogger())
	publisher.Close()

	publisher.Publish(NewUserTranscript("late"))

	assert.Empty(t, channel.all())
}
