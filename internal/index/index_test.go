package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ncert-rag/internal/models"
)

func TestFilterWhere(t *testing.T) {
	assert.Nil(t, Filter{}.where())

	w := Filter{Grade: 6, Subject: "science", Language: "english"}.where()
	assert.Equal(t, map[string]string{
		"grade":    "6",
		"subject":  "science",
		"language": "english",
	}, w)

	w = Filter{Language: "hindi"}.where()
	assert.Equal(t, map[string]string{"language": "Hindi"}, w)
}

func TestStoredLanguageCasing(t *testing.T) {
	assert.Equal(t, "Hindi", storedLanguage("hindi"))
	assert.Equal(t, "Hindi", storedLanguage("HI"))
	assert.Equal(t, "english", storedLanguage("English"))
	assert.Equal(t, "english", storedLanguage("en"))
	assert.Equal(t, "sanskrit", storedLanguage("sanskrit"))
}

func TestFlattenMetadataPrefixesExtras(t *testing.T) {
	flat := flattenMetadata(models.ChunkMetadata{
		Chapter:    "2. Light",
		Section:    "2.1 Shadows",
		Page:       30,
		Grade:      6,
		Subject:    "science",
		Language:   "english",
		ChunkIndex: 2,
		TokenCount: 50,
		SourceFile: "fesc102.pdf",
	}, map[string]string{"book_code": "fesc1"})

	assert.Equal(t, "6", flat["grade"])
	assert.Equal(t, "30", flat["page_num"])
	assert.Equal(t, "fesc102.pdf", flat["meta_source_file"])
	assert.Equal(t, "fesc1", flat["meta_book_code"])
	assert.NotContains(t, flat, "book_code")
}

func TestMetadataFromMapDefaults(t *testing.T) {
	got := metadataFromMap(map[string]string{"grade": "6"})
	assert.Equal(t, "Unknown", got.Chapter)
	assert.Equal(t, "General", got.Section)
	assert.Equal(t, 6, got.Grade)
	assert.Equal(t, 0, got.Page)
}
