// Package citation derives display-ready citations and full-chunk views
// from the complete (pre-truncation) retrieval list.
package citation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ncert-rag/internal/models"
)

const (
	excerptLen     = 150
	excerptMarker  = "..."
	unknownChapter = "Unknown"
	generalSection = "General"
)

var titleCaser = cases.Title(language.English)

// Relevance converts cosine distance in [0,2] to a closeness score,
// rounded to 3 decimals. Degenerate matches can go negative; the value is
// never clamped.
func Relevance(distance float64) float64 {
	return math.Round((1-distance)*1000) / 1000
}

// Excerpt returns the first 150 characters of a chunk, with a marker iff
// the text was longer.
func Excerpt(text string) string {
	if len(text) <= excerptLen {
		return text
	}
	return strings.TrimSpace(truncate(text, excerptLen)) + excerptMarker
}

// Format builds ranked citations from the retrieval list. Citations are
// sorted by descending relevance (stable on ties, preserving retrieval
// order) and ranks renumbered 1..n after the sort.
func Format(chunks []models.RetrievedChunk, grade int, subject string) []models.Citation {
	source := SourceLabel(subject, grade)

	citations := make([]models.Citation, 0, len(chunks))
	for _, chunk := range chunks {
		chapter := chunk.Metadata.Chapter
		section := chunk.Metadata.Section
		if chapter == unknownChapter && section != "" && section != generalSection {
			chapter = section
		}

		citations = append(citations, models.Citation{
			Source:    source,
			Chapter:   chapter,
			Section:   section,
			Page:      chunk.Metadata.Page,
			Excerpt:   Excerpt(chunk.Text),
			Relevance: Relevance(chunk.Distance),
			ChunkID:   chunk.ChunkID,
		})
	}

	sort.SliceStable(citations, func(i, j int) bool {
		return citations[i].Relevance > citations[j].Relevance
	})
	for i := range citations {
		citations[i].ID = i + 1
	}
	return citations
}

// FormatSourceChunks builds the parallel full-chunk view: complete text and
// metadata, ordered identically to the citations.
func FormatSourceChunks(chunks []models.RetrievedChunk) []models.SourceChunk {
	full := make([]models.SourceChunk, 0, len(chunks))
	for _, chunk := range chunks {
		full = append(full, models.SourceChunk{
			ChunkID:   chunk.ChunkID,
			FullText:  chunk.Text,
			Metadata:  chunk.Metadata,
			Relevance: Relevance(chunk.Distance),
		})
	}
	sort.SliceStable(full, func(i, j int) bool {
		return full[i].Relevance > full[j].Relevance
	})
	return full
}

// SourceLabel renders the display name of the textbook a chunk came from.
func SourceLabel(subject string, grade int) string {
	subjectTitle := titleCaser.String(strings.ReplaceAll(subject, "_", " "))
	return fmt.Sprintf("NCERT %s Grade %d", subjectTitle, grade)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
