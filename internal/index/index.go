// Package index is the retrieval gateway: filtered nearest-neighbor search
// over the textbook corpus, with two selectable backends (embedded chromem
// and Postgres/pgvector).
package index

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ncert-rag/internal/models"
)

// RetrievalError marks the vector store as unreachable or uninitialized.
// It surfaces as a failed query; there is no retry.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("vector store: %v", e.Err) }

func (e *RetrievalError) Unwrap() error { return e.Err }

// Filter restricts search to chunks matching every field that is set.
// A zero Filter matches everything; that is not an error.
type Filter struct {
	Grade    int // 0 means unset
	Subject  string
	Language string
}

func (f Filter) where() map[string]string {
	w := make(map[string]string)
	if f.Grade > 0 {
		w["grade"] = strconv.Itoa(f.Grade)
	}
	if f.Subject != "" {
		w["subject"] = f.Subject
	}
	if f.Language != "" {
		w["language"] = storedLanguage(f.Language)
	}
	if len(w) == 0 {
		return nil
	}
	return w
}

// storedLanguage maps a language constraint, case-insensitively, onto the
// literal casing variants present in the corpus ("Hindi" vs "english").
func storedLanguage(language string) string {
	switch strings.ToLower(language) {
	case "hindi", "hi":
		return "Hindi"
	case "english", "en":
		return "english"
	}
	return language
}

// IndexedChunk is one chunk ready for ingestion: id, embedding, text, and
// metadata. Extra carries nested metadata that gets flattened with the
// meta_ key prefix.
type IndexedChunk struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  models.ChunkMetadata
	Extra     map[string]string
}

// Store is the vector store contract shared by both backends. The handle is
// long-lived and shared across concurrent queries; Search is read-only and
// Add is the separate offline ingestion path.
type Store interface {
	Search(ctx context.Context, embedding []float32, f Filter, topK int) ([]models.RetrievedChunk, error)
	Add(ctx context.Context, chunks []IndexedChunk) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// flattenMetadata turns the typed metadata record into the flat string map
// stored alongside each chunk. Nested extras get the meta_ prefix.
func flattenMetadata(m models.ChunkMetadata, extra map[string]string) map[string]string {
	flat := map[string]string{
		"grade":       strconv.Itoa(m.Grade),
		"subject":     m.Subject,
		"language":    m.Language,
		"chapter":     m.Chapter,
		"section":     m.Section,
		"page_num":    strconv.Itoa(m.Page),
		"chunk_index": strconv.Itoa(m.ChunkIndex),
		"token_count": strconv.Itoa(m.TokenCount),
	}
	if m.SourceFile != "" {
		flat["meta_source_file"] = m.SourceFile
	}
	for k, v := range extra {
		flat["meta_"+k] = v
	}
	return flat
}

func metadataFromMap(flat map[string]string) models.ChunkMetadata {
	return models.ChunkMetadata{
		Chapter:    valueOr(flat, "chapter", "Unknown"),
		Section:    valueOr(flat, "section", "General"),
		Page:       atoi(flat["page_num"]),
		Grade:      atoi(flat["grade"]),
		Subject:    flat["subject"],
		Language:   flat["language"],
		ChunkIndex: atoi(flat["chunk_index"]),
		TokenCount: atoi(flat["token_count"]),
		SourceFile: flat["meta_source_file"],
	}
}

func valueOr(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return fallback
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
