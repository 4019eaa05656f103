package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, store *ChromemStore) {
	t.Helper()
	require.NoError(t, store.Upsert(context.Background(), []Document{
		{ID: "exact", Content: "Vacation is 25 days.", Embedding: []float32{1, 0, 0}, Source: "handbook.md"},
		{ID: "close", Content: "Ask your manager first.", Embedding: []float32{0.9, 0.1, 0}, Source: "handbook.md"},
		{ID: "diagonal", Content: "Office hours are 9 to 5.", Embedding: []float32{0.7, 0.7, 0}, Source: "handbook.md"},
		{ID: "orthogonal", Content: "Parking is free.", Embedding: []float32{0, 1, 0}, Source: "handbook.md"},
	}))
}

func TestChromemStore_ThresholdAndOrder(t *testing.T) {
	store, err := OpenChromemStore("", "handbook_docs")
	require.NoError(t, err)
	seedStore(t, store)

	chunks, err := store.Retrieve(context.Background(), []float32{1, 0, 0}, 0.78, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "exact", chunks[0].ID)
	assert.Equal(t, "close", chunks[1].ID)
	assert.InDelta(t, 1.0, chunks[0].Similarity, 0.0001)
	assert.GreaterOrEqual(t, chunks[0].Similarity, chunks[1].Similarity)
	assert.Equal(t, "handbook.md", chunks[0].Metadata[metadataSource])
}

func TestChromemStore_MaxResults(t *testing.T) {
	store, err := OpenChromemStore("", "handbook_docs")
	require.NoError(t, err)
	seedStore(t, store)

	chunks, err := store.Retrieve(context.Background(), []float32{1, 0, 0}, 0, 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "exact", chunks[0].ID)

	chunks, err = store.Retrieve(context.Background(), []float32{1, 0, 0}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChromemStore_MissingCollectionIsEmpty(t *testing.T) {
	store, err := OpenChromemStore("", "handbook_docs")
	require.NoError(t, err)

	chunks, err := store.Retrieve(context.Background(), []float32{1, 0, 0}, 0.78, 5)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Equal(t, 0, store.Count())
}

func TestChromemStore_Persistent(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenChromemStore(dir, "handbook_docs")
	require.NoError(t, err)
	seedStore(t, store)

	reopened, err := OpenChromemStore(dir, "handbook_docs")
	require.NoError(t, err)
	assert.Equal(t, 4, reopened.Count())

	require.NoError(t, reopened.Delete(context.Background(), "orthogonal", "unknown"))
	assert.Equal(t, 3, reopened.Count())
}

func TestOpenChromemStore_RequiresCollection(t *testing.T) {
	_, err := OpenChromemStore("", " ")
	require.Error(t, err)
}
