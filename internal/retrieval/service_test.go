package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicekb/voicerag/internal/storage"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return f.vector, f.err
}

type fakeSearcher struct {
	chunks    []storage.RetrievedChunk
	err       error
	gotVector []float32
	gotTopK   int
	gotThresh float64
}

func (f *fakeSearcher) Search(_ context.Context, vector []float32, topK int, threshold float64) ([]storage.RetrievedChunk, error) {
	f.gotVector = vector
	f.gotTopK = topK
	f.gotThresh = threshold
	return f.chunks, f.err
}

func newTestService(e QueryEmbedder, s Searcher) *Service {
	return NewService(e, s, 5, 0.15, slog.New(slog.DiscardHandler))
}

func TestRetrieve_PassesVectorAndThreshold(t *testing.T) {
	searcher := &fakeSearcher{chunks: []storage.RetrievedChunk{
		{Text: "relevant chunk", DocumentID: "doc-1", Filename: "a.txt", Score: 0.92},
	}}
	svc := newTestService(&fakeEmbedder{vector: []float32{1, 2, 3}}, searcher)

	chunks, err := svc.Retrieve(context.Background(), "what is relevant?", 3)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "doc-1", chunks[0].DocumentID)

	assert.Equal(t, []float32{1, 2, 3}, searcher.gotVector)
	assert.Equal(t, 3, searcher.gotTopK)
	assert.InDelta(t, 0.15, searcher.gotThresh, 1e-9)
}

func TestRetrieve_DefaultTopK(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := newTestService(&fakeEmbedder{vector: []float32{1}}, searcher)

	_, err := svc.Retrieve(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, searcher.gotTopK)
}

func TestRetrieve_EmptyResultIsNonNil(t *testing.T) {
	svc := newTestService(&fakeEmbedder{vector: []float32{1}}, &fakeSearcher{chunks: nil})

	chunks, err := svc.Retrieve(context.Background(), "nothing matches", 5)
	require.NoError(t, err)
	assert.NotNil(t, chunks)
	assert.Empty(t, chunks)
}

func TestRetrieve_EmbedderErrorPropagates(t *testing.T) {
	svc := newTestService(&fakeEmbedder{err: errors.New("provider down")}, &fakeSearcher{})

	_, err := svc.Retrieve(context.Background(), "query", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestRetrieve_SearchErrorPropagates(t *testing.T) {
	svc := newTestService(&fakeEmbedder{vector: []float32{1}}, &fakeSearcher{err: errors.New("qdrant down")})

	_, err := svc.Retrieve(context.Background(), "query", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search")
}
