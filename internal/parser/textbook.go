package parser

import (
	"regexp"
	"strings"

	"ncert-rag/internal/models"
)

// Heading patterns found in extracted NCERT textbook text.
var (
	chapterRe = regexp.MustCompile(`(?m)^\s*(?:CHAPTER|Chapter)\s+(\d+)\s*[:.\-]?\s*(.*)$`)
	sectionRe = regexp.MustCompile(`(?m)^\s*(\d+\.\d+)\s+([A-Z][^\n]{2,80})$`)
)

// Section is a run of chunks under one chapter/section heading.
type Section struct {
	Chapter string
	Section string
	Chunks  []models.Chunk
}

// TagSections walks parsed chunks in order and groups them under the most
// recent chapter and section headings seen in the text. Chunks before any
// heading fall under the "Unknown"/"General" sentinels that the citation
// formatter knows how to handle.
func TagSections(chunks []models.Chunk) []Section {
	currentChapter := "Unknown"
	currentSection := "General"

	var sections []Section
	appendChunk := func(chunk models.Chunk) {
		n := len(sections)
		if n == 0 || sections[n-1].Chapter != currentChapter || sections[n-1].Section != currentSection {
			sections = append(sections, Section{Chapter: currentChapter, Section: currentSection})
			n++
		}
		sections[n-1].Chunks = append(sections[n-1].Chunks, chunk)
	}

	for _, chunk := range chunks {
		if m := chapterRe.FindStringSubmatch(chunk.Content); m != nil {
			title := strings.TrimSpace(m[2])
			if title != "" {
				currentChapter = "Chapter " + m[1] + ": " + title
			} else {
				currentChapter = "Chapter " + m[1]
			}
			currentSection = "General"
		}
		if m := sectionRe.FindStringSubmatch(chunk.Content); m != nil {
			currentSection = m[1] + " " + strings.TrimSpace(m[2])
		}
		appendChunk(chunk)
	}
	return sections
}
