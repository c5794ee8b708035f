package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncert-rag/internal/models"
)

func newTestStore(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore("", "test_chunks", true, "")
	require.NoError(t, err)
	return store
}

func testChunk(id string, embedding []float32, meta models.ChunkMetadata) IndexedChunk {
	return IndexedChunk{ID: id, Text: "text " + id, Embedding: embedding, Metadata: meta}
}

func TestChromemStoreSearchOrdersByDistance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []IndexedChunk{
		testChunk("exact", []float32{1, 0}, models.ChunkMetadata{Grade: 6}),
		testChunk("near", []float32{0.6, 0.8}, models.ChunkMetadata{Grade: 6}),
		testChunk("orthogonal", []float32{0, 1}, models.ChunkMetadata{Grade: 6}),
	}))

	chunks, err := store.Search(ctx, []float32{1, 0}, Filter{}, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "exact", chunks[0].ChunkID)
	assert.Equal(t, "near", chunks[1].ChunkID)
	assert.InDelta(t, 0.0, chunks[0].Distance, 1e-6)
	assert.InDelta(t, 0.4, chunks[1].Distance, 1e-6)
}

func TestChromemStoreGradeFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// The grade 7 chunk is closer to the query but must not appear when the
	// search is constrained to grade 6.
	require.NoError(t, store.Add(ctx, []IndexedChunk{
		testChunk("g7", []float32{1, 0}, models.ChunkMetadata{Grade: 7, Subject: "science"}),
		testChunk("g6", []float32{0.6, 0.8}, models.ChunkMetadata{Grade: 6, Subject: "science"}),
	}))

	chunks, err := store.Search(ctx, []float32{1, 0}, Filter{Grade: 6}, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "g6", chunks[0].ChunkID)
	assert.Equal(t, 6, chunks[0].Metadata.Grade)
}

func TestChromemStoreLanguageFilterMatchesStoredCasing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []IndexedChunk{
		testChunk("en", []float32{1, 0}, models.ChunkMetadata{Grade: 6, Language: "english"}),
		testChunk("hi", []float32{0, 1}, models.ChunkMetadata{Grade: 6, Language: "Hindi"}),
	}))

	chunks, err := store.Search(ctx, []float32{1, 0}, Filter{Language: "hindi"}, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hi", chunks[0].ChunkID)

	chunks, err = store.Search(ctx, []float32{1, 0}, Filter{Language: "English"}, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "en", chunks[0].ChunkID)
}

func TestChromemStoreTopKClampedToCollectionSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []IndexedChunk{
		testChunk("a", []float32{1, 0}, models.ChunkMetadata{Grade: 6}),
		testChunk("b", []float32{0, 1}, models.ChunkMetadata{Grade: 6}),
	}))

	chunks, err := store.Search(ctx, []float32{1, 0}, Filter{}, 10)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestChromemStoreEmptyCollection(t *testing.T) {
	store := newTestStore(t)

	chunks, err := store.Search(context.Background(), []float32{1, 0}, Filter{}, 3)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChromemStoreMetadataRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []IndexedChunk{
		{
			ID:        "a",
			Text:      "plants make food",
			Embedding: []float32{1, 0},
			Metadata: models.ChunkMetadata{
				Chapter:    "1. Food: Where Does It Come From?",
				Section:    "1.2 Plant Parts",
				Page:       12,
				Grade:      6,
				Subject:    "science",
				Language:   "english",
				ChunkIndex: 4,
				TokenCount: 87,
				SourceFile: "fesc101.pdf",
			},
			Extra: map[string]string{"book_code": "fesc1"},
		},
	}))

	chunks, err := store.Search(ctx, []float32{1, 0}, Filter{}, 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	got := chunks[0].Metadata
	assert.Equal(t, "1. Food: Where Does It Come From?", got.Chapter)
	assert.Equal(t, "1.2 Plant Parts", got.Section)
	assert.Equal(t, 12, got.Page)
	assert.Equal(t, 6, got.Grade)
	assert.Equal(t, "science", got.Subject)
	assert.Equal(t, 4, got.ChunkIndex)
	assert.Equal(t, 87, got.TokenCount)
	assert.Equal(t, "fesc101.pdf", got.SourceFile)
}

func TestChromemStoreCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.Add(ctx, []IndexedChunk{
		testChunk("a", []float32{1, 0}, models.ChunkMetadata{Grade: 6}),
	}))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
