// Command ingest is the offline ingestion path: it parses textbook files
// into chunks, embeds them, and appends them to the vector index. It also
// accepts pre-embedded JSON chunk files produced by earlier pipelines.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"ncert-rag/internal/config"
	"ncert-rag/internal/embedding"
	"ncert-rag/internal/helper"
	"ncert-rag/internal/index"
	"ncert-rag/internal/models"
	"ncert-rag/internal/parser"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	filePath := flag.String("file", "", "Path to the textbook file to ingest")
	jsonPath := flag.String("json", "", "Path to a pre-embedded JSON chunk file")
	grade := flag.Int("grade", 0, "Grade the material belongs to")
	subject := flag.String("subject", "", "Subject the material belongs to")
	language := flag.String("language", "english", "Corpus language of the material")
	initTable := flag.Bool("init", false, "Create the pgvector table before ingesting")
	dryRun := flag.Bool("dry-run", false, "Parse and print, do not write to the index")
	flag.Parse()

	if *filePath == "" && *jsonPath == "" {
		log.Fatal().Msg("Provide a document with -file or a pre-embedded chunk file with -json")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	var chunks []index.IndexedChunk
	if *jsonPath != "" {
		chunks, err = loadEmbeddedChunks(*jsonPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error loading embedded chunks")
		}
	} else {
		if *grade == 0 || *subject == "" {
			log.Fatal().Msg("-grade and -subject are required when ingesting a document")
		}
		chunks, err = parseFile(*filePath, *grade, *subject, *language, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing document")
		}
	}

	if len(chunks) == 0 {
		log.Warn().Msg("No chunks produced, nothing to ingest")
		return
	}

	if *dryRun {
		helper.PrettyPrint(summarize(chunks))
		return
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	if err := embedMissing(ctx, embedder, chunks); err != nil {
		log.Fatal().Err(err).Msg("Error generating embeddings")
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing vector store")
	}
	defer store.Close()

	if *initTable {
		pg, ok := store.(*index.PgVectorStore)
		if !ok {
			log.Fatal().Msg("-init only applies to the pgvector backend")
		}
		if err := pg.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error creating table")
		}
	}

	log.Info().Int("chunks", len(chunks)).Msg("Adding chunks to vector index")
	if err := store.Add(ctx, chunks); err != nil {
		log.Fatal().Err(err).Msg("Error adding chunks to index")
	}

	if cfg.VectorStore.Backend == "chromem" && cfg.VectorStore.InMemory && cfg.VectorStore.EncryptionKey != "" {
		cs := store.(*index.ChromemStore)
		if err := cs.Export(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error exporting collection")
		}
	}

	count, err := store.Count(ctx)
	if err == nil {
		log.Info().Int("total_documents", count).Msg("Ingestion complete")
	}
}

// parseFile parses a document, tags chapter/section structure, and builds
// index-ready chunks without embeddings.
func parseFile(filePath string, grade int, subject, language string, cfg *config.Config) ([]index.IndexedChunk, error) {
	parsed, err := parser.ParseDocument(filePath, cfg)
	if err != nil {
		return nil, err
	}

	sourceFile := filepath.Base(filePath)
	var chunks []index.IndexedChunk
	chunkIndex := 0
	for _, section := range parser.TagSections(parsed) {
		for _, chunk := range section.Chunks {
			chunks = append(chunks, index.IndexedChunk{
				ID:   helper.NewChunkID(),
				Text: chunk.Content,
				Metadata: models.ChunkMetadata{
					Chapter:    section.Chapter,
					Section:    section.Section,
					Page:       chunk.PageNumber,
					Grade:      grade,
					Subject:    subject,
					Language:   language,
					ChunkIndex: chunkIndex,
					TokenCount: chunk.TokenCount,
					SourceFile: sourceFile,
				},
			})
			chunkIndex++
		}
	}
	return chunks, nil
}

// embeddedChunk mirrors the JSON chunk files produced by earlier embedding
// pipelines; nested metadata is flattened into Extra at load time.
type embeddedChunk struct {
	ChunkID    string            `json:"chunk_id"`
	Text       string            `json:"text"`
	Grade      int               `json:"grade"`
	Subject    string            `json:"subject"`
	Language   string            `json:"language"`
	Chapter    string            `json:"chapter"`
	Section    string            `json:"section"`
	PageNum    int               `json:"page_num"`
	ChunkIndex int               `json:"chunk_index"`
	TokenCount int               `json:"token_count"`
	Embedding  []float32         `json:"embedding"`
	Metadata   map[string]string `json:"metadata"`
}

func loadEmbeddedChunks(path string) ([]index.IndexedChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []embeddedChunk
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse chunk file: %w", err)
	}

	chunks := make([]index.IndexedChunk, 0, len(raw))
	for _, ec := range raw {
		id := ec.ChunkID
		if id == "" {
			id = helper.NewChunkID()
		}
		chunks = append(chunks, index.IndexedChunk{
			ID:        id,
			Text:      ec.Text,
			Embedding: ec.Embedding,
			Metadata: models.ChunkMetadata{
				Chapter:    ec.Chapter,
				Section:    ec.Section,
				Page:       ec.PageNum,
				Grade:      ec.Grade,
				Subject:    ec.Subject,
				Language:   ec.Language,
				ChunkIndex: ec.ChunkIndex,
				TokenCount: ec.TokenCount,
			},
			Extra: ec.Metadata,
		})
	}
	log.Info().Int("chunks", len(chunks)).Str("file", path).Msg("Loaded embedded chunks")
	return chunks, nil
}

// embedMissing embeds every chunk that arrived without an embedding.
func embedMissing(ctx context.Context, embedder *embeddings.EmbedderImpl, chunks []index.IndexedChunk) error {
	var texts []string
	var missing []int
	for i, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			texts = append(texts, chunk.Text)
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	log.Info().Int("chunks", len(missing)).Msg("Generating embeddings")
	vectors, err := embedding.EmbedChunks(ctx, embedder, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(missing) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(missing))
	}
	for j, i := range missing {
		chunks[i].Embedding = vectors[j]
	}
	return nil
}

func summarize(chunks []index.IndexedChunk) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(chunks))
	for _, chunk := range chunks {
		preview := chunk.Text
		if len(preview) > 120 {
			preview = preview[:120] + "..."
		}
		out = append(out, map[string]interface{}{
			"id":       chunk.ID,
			"chapter":  chunk.Metadata.Chapter,
			"section":  chunk.Metadata.Section,
			"page":     chunk.Metadata.Page,
			"tokens":   chunk.Metadata.TokenCount,
			"preview":  preview,
			"embedded": len(chunk.Embedding) > 0,
		})
	}
	return out
}

func newStore(cfg *config.Config) (index.Store, error) {
	switch cfg.VectorStore.Backend {
	case "pgvector":
		return index.NewPgVectorStore(index.DatabaseOptions{
			DSN:      cfg.Database.DSN,
			Password: cfg.Database.Password,
			Debug:    cfg.Database.Debug,
		})
	default:
		return index.NewChromemStore(
			cfg.VectorStore.Path,
			cfg.VectorStore.Collection,
			cfg.VectorStore.InMemory,
			cfg.VectorStore.EncryptionKey,
		)
	}
}
