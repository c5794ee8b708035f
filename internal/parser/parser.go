// Package parser turns source documents into page-tagged chunks for the
// offline ingestion path.
package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"ncert-rag/internal/config"
	"ncert-rag/internal/models"
)

const (
	defaultChunkSize    = 1000 // bytes
	defaultChunkOverlap = 500  // bytes
	defaultPageNumber   = 1
)

type docParser struct {
	chunkSize    int
	chunkOverlap int
}

// ParseDocument parses a document into chunks, dispatching on extension.
func ParseDocument(filePath string, cfg *config.Config) ([]models.Chunk, error) {
	p := docParser{chunkSize: defaultChunkSize, chunkOverlap: defaultChunkOverlap}
	if cfg != nil {
		if cfg.RAG.ChunkSize > 0 {
			p.chunkSize = cfg.RAG.ChunkSize
		}
		if cfg.RAG.ChunkOverlap > 0 {
			p.chunkOverlap = cfg.RAG.ChunkOverlap
		}
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return p.parsePDF(filePath)
	case ".docx":
		return p.parseDOCX(filePath)
	case ".pptx":
		return p.parsePPTX(filePath)
	case ".xlsx":
		return p.parseXLSX(filePath)
	case ".ods":
		return p.parseODS(filePath)
	case ".txt", ".md":
		return p.parseText(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func (p docParser) parsePDF(filePath string) ([]models.Chunk, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		markdown, err := normalizeMarkdown(pageText)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, p.chunksForPage(markdown, i)...)
	}
	return chunks, nil
}

func (p docParser) parseDOCX(filePath string) ([]models.Chunk, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var chunks []models.Chunk
	for _, paragraph := range strings.Split(content, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		markdown, err := normalizeMarkdown(paragraph)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, newChunk(markdown, defaultPageNumber, len(chunks)+1))
	}
	return chunks, nil
}

func (p docParser) parsePPTX(filePath string) ([]models.Chunk, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []models.Chunk
	slide := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slide++
		slideText := extractTextFromXML(string(data))
		markdown, err := normalizeMarkdown(slideText)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(markdown) != "" {
			chunks = append(chunks, newChunk(markdown, slide, len(chunks)+1))
		}
	}
	return chunks, nil
}

func (p docParser) parseXLSX(filePath string) ([]models.Chunk, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		fmt.Fprintf(&text, "## Sheet: %s\n", sheet.Name)
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		markdown, err := normalizeMarkdown(text.String())
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(markdown) != "" {
			chunks = append(chunks, newChunk(markdown, sheetNum+1, len(chunks)+1))
		}
	}
	return chunks, nil
}

func (p docParser) parseODS(filePath string) ([]models.Chunk, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []models.Chunk
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		fmt.Fprintf(&text, "## Sheet: %s\n", sheetName)
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		markdown, err := normalizeMarkdown(text.String())
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(markdown) != "" {
			chunks = append(chunks, newChunk(markdown, sheetNum+1, len(chunks)+1))
		}
	}
	return chunks, nil
}

func (p docParser) parseText(filePath string) ([]models.Chunk, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	markdown, err := normalizeMarkdown(string(data))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(markdown) == "" {
		return nil, nil
	}
	return p.chunksForPage(markdown, defaultPageNumber), nil
}

func normalizeMarkdown(text string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return strings.Trim(buf.String(), " \t\n\r"), nil
}

func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}

func (p docParser) chunksForPage(content string, pageNumber int) []models.Chunk {
	var chunks []models.Chunk
	for i, chunkString := range chunkContent(content, p.chunkSize, p.chunkOverlap) {
		chunks = append(chunks, newChunk(chunkString, pageNumber, i+1))
	}
	return chunks
}

func newChunk(content string, pageNumber, chunkID int) models.Chunk {
	return models.Chunk{
		Content:    content,
		PageNumber: pageNumber,
		ChunkID:    chunkID,
		TokenCount: CountTokens(content),
	}
}

// chunkContent splits content into chunks of at most maxChars bytes with
// overlapChars of carry-over, preferring to break at a space, newline, or
// sentence end within the last 10% of the chunk.
func chunkContent(content string, maxChars, overlapChars int) []string {
	if maxChars <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}

	content = strings.TrimSpace(content)
	contentLen := len(content)
	if contentLen == 0 {
		return nil
	}
	if contentLen <= maxChars {
		return []string{content}
	}

	var chunks []string
	start := 0
	for start < contentLen {
		end := min(start+maxChars, contentLen)

		if end < contentLen {
			lookBack := min(maxChars/10, end-start)
			for i := end - 1; i >= end-lookBack && i > start; i-- {
				if content[i] == ' ' || content[i] == '\n' || content[i] == '.' {
					end = i + 1
					break
				}
			}
		}

		chunk := strings.TrimSpace(content[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		start += maxChars - overlapChars
		if start >= contentLen {
			break
		}
	}
	return chunks
}
