package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ncert-rag/internal/glossary"
	"ncert-rag/internal/models"
)

const (
	// DefaultMaxContextChars leaves room for the instruction block inside
	// the generation context window.
	DefaultMaxContextChars = 3500
	// DefaultMaxChunkChars caps each chunk before it enters the context.
	DefaultMaxChunkChars = 800

	truncationMarker = "..."
)

// AssembleContext concatenates retrieved chunks, in retrieval order, into a
// single labeled context block. Each chunk is truncated to maxChunkChars
// first; the first chunk whose labeled block would push the total past
// maxContextChars stops assembly entirely; later, smaller chunks are not
// packed in. The caller keeps the full retrieval list for citations.
func AssembleContext(chunks []models.RetrievedChunk, language string, maxContextChars, maxChunkChars int) string {
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}
	if maxChunkChars <= 0 {
		maxChunkChars = DefaultMaxChunkChars
	}
	hindi := glossary.IsHindi(language)

	var b strings.Builder
	total := 0
	for i, chunk := range chunks {
		text := chunk.Text
		if len(text) > maxChunkChars {
			text = truncate(text, maxChunkChars) + truncationMarker
		}

		var block string
		if hindi {
			block = fmt.Sprintf("संदर्भ %d:\n%s\n\n", i+1, text)
		} else {
			block = fmt.Sprintf("Context %d:\n%s\n\n", i+1, text)
		}

		if total+len(block) > maxContextChars {
			break
		}
		b.WriteString(block)
		total += len(block)
	}
	return b.String()
}

// truncate cuts at n bytes, backing off so it never splits a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
