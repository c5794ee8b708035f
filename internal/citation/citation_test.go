package citation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ncert-rag/internal/models"
)

func hit(id, text string, distance float64, meta models.ChunkMetadata) models.RetrievedChunk {
	return models.RetrievedChunk{ChunkID: id, Text: text, Metadata: meta, Distance: distance}
}

func TestRelevance(t *testing.T) {
	assert.Equal(t, 0.8, Relevance(0.2))
	assert.Equal(t, 1.0, Relevance(0))
	assert.Equal(t, 0.877, Relevance(0.123456))
	assert.Equal(t, -0.5, Relevance(1.5))
}

func TestExcerptShortTextUnchanged(t *testing.T) {
	text := strings.Repeat("a", 150)
	assert.Equal(t, text, Excerpt(text))
}

func TestExcerptLongTextTruncatedWithMarker(t *testing.T) {
	text := strings.Repeat("a", 149) + " b"
	got := Excerpt(text)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", 149)+"...", got)
}

func TestFormatSortsByRelevanceAndRenumbers(t *testing.T) {
	chunks := []models.RetrievedChunk{
		hit("a", "alpha", 0.3, models.ChunkMetadata{Chapter: "1. Food"}),
		hit("b", "beta", 0.1, models.ChunkMetadata{Chapter: "2. Light"}),
		hit("c", "gamma", 0.3, models.ChunkMetadata{Chapter: "3. Water"}),
	}
	citations := Format(chunks, 6, "science")

	assert.Len(t, citations, 3)
	assert.Equal(t, "b", citations[0].ChunkID)
	// Ties keep retrieval order.
	assert.Equal(t, "a", citations[1].ChunkID)
	assert.Equal(t, "c", citations[2].ChunkID)
	for i, c := range citations {
		assert.Equal(t, i+1, c.ID)
	}
	assert.Equal(t, 0.9, citations[0].Relevance)
}

func TestFormatChapterFallsBackToSection(t *testing.T) {
	chunks := []models.RetrievedChunk{
		hit("a", "x", 0.1, models.ChunkMetadata{Chapter: "Unknown", Section: "1.2 Components of Food"}),
		hit("b", "y", 0.2, models.ChunkMetadata{Chapter: "Unknown", Section: "General"}),
		hit("c", "z", 0.3, models.ChunkMetadata{Chapter: "3. Light", Section: "3.1 Shadows"}),
	}
	citations := Format(chunks, 6, "science")

	assert.Equal(t, "1.2 Components of Food", citations[0].Chapter)
	assert.Equal(t, "Unknown", citations[1].Chapter)
	assert.Equal(t, "3. Light", citations[2].Chapter)
}

func TestFormatSourceLabel(t *testing.T) {
	citations := Format([]models.RetrievedChunk{hit("a", "x", 0.1, models.ChunkMetadata{})}, 7, "science")
	assert.Equal(t, "NCERT Science Grade 7", citations[0].Source)
}

func TestSourceLabelTitleCasesUnderscoredSubjects(t *testing.T) {
	assert.Equal(t, "NCERT Social Science Grade 6", SourceLabel("social_science", 6))
	assert.Equal(t, "NCERT Science Grade 8", SourceLabel("SCIENCE", 8))
}

func TestFormatSourceChunksOrderedLikeCitations(t *testing.T) {
	chunks := []models.RetrievedChunk{
		hit("a", "alpha", 0.4, models.ChunkMetadata{Page: 1}),
		hit("b", "beta", 0.1, models.ChunkMetadata{Page: 2}),
	}
	full := FormatSourceChunks(chunks)

	assert.Len(t, full, 2)
	assert.Equal(t, "b", full[0].ChunkID)
	assert.Equal(t, "beta", full[0].FullText)
	assert.Equal(t, 0.9, full[0].Relevance)
	assert.Equal(t, "a", full[1].ChunkID)
}
