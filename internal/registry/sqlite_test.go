package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &Document{
		ID:        "doc-1",
		Filename:  "report.pdf",
		Status:    StatusProcessing,
		FileSize:  2048,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.Filename)
	assert.Equal(t, StatusProcessing, got.Status)
	assert.Equal(t, int64(2048), got.FileSize)
	assert.WithinDuration(t, doc.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestStore_SaveTwiceUpdatesTerminalState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &Document{ID: "doc-1", Filename: "a.txt", Status: StatusProcessing, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, doc))

	doc.Status = StatusReady
	doc.Chunks = 3
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, got.Status)
	assert.Equal(t, 3, got.Chunks)
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListAllOrderedByCreation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	// Insert out of creation order.
	for _, d := range []struct {
		id  string
		off time.Duration
	}{
		{"doc-c", 2 * time.Second},
		{"doc-a", 0},
		{"doc-b", time.Second},
	} {
		require.NoError(t, store.Save(ctx, &Document{
			ID: d.id, Filename: d.id + ".txt", Status: StatusReady, CreatedAt: base.Add(d.off),
		}))
	}

	docs, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "doc-a", docs[0].ID)
	assert.Equal(t, "doc-b", docs[1].ID)
	assert.Equal(t, "doc-c", docs[2].ID)
}

func TestStore_ListAllOrdersSubsecondSiblings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A trailing-zero-trimming timestamp format would render these as
	// "...00.1Z" and "...00.15Z", sorting the newer document first.
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, &Document{
		ID: "doc-newer", Filename: "newer.txt", Status: StatusReady,
		CreatedAt: base.Add(150 * time.Millisecond),
	}))
	require.NoError(t, store.Save(ctx, &Document{
		ID: "doc-older", Filename: "older.txt", Status: StatusReady,
		CreatedAt: base.Add(100 * time.Millisecond),
	}))

	docs, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-older", docs[0].ID)
	assert.Equal(t, "doc-newer", docs[1].ID)
}

func TestStore_ListAllEmpty(t *testing.T) {
	store := newTestStore(t)

	docs, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestStore_DeleteAndExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Document{
		ID: "doc-1", Filename: "a.txt", Status: StatusReady, CreatedAt: time.Now().UTC(),
	}))

	exists, err := store.Exists(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "doc-1"))

	exists, err = store.Exists(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting an absent id is not an error.
	assert.NoError(t, store.Delete(ctx, "doc-1"))
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, &Document{
		ID: "doc-1", Filename: "kept.txt", Status: StatusReady, Chunks: 7, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "kept.txt", got.Filename)
	assert.Equal(t, 7, got.Chunks)
}
