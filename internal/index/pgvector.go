package index

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"ncert-rag/internal/models"
)

type chunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID         string    `bun:"id,pk"`
	Text       string    `bun:"text,notnull"`
	Embedding  []float32 `bun:"embedding,notnull,type:vector(1024)"`
	Grade      int       `bun:"grade"`
	Subject    string    `bun:"subject"`
	Language   string    `bun:"language"`
	Chapter    string    `bun:"chapter"`
	Section    string    `bun:"section"`
	PageNum    int       `bun:"page_num"`
	ChunkIndex int       `bun:"chunk_index"`
	TokenCount int       `bun:"token_count"`
	SourceFile string    `bun:"source_file"`

	Distance float64 `bun:"distance,scanonly"`
}

// PgVectorStore is the Postgres/pgvector backend. Chunk metadata lives in
// dedicated columns, flattened once at ingestion like the chromem backend.
type PgVectorStore struct {
	db *bun.DB
}

func NewPgVectorStore(cfg DatabaseOptions) (*PgVectorStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PgVectorStore{db: db}, nil
}

// DatabaseOptions configures the pgvector connection.
type DatabaseOptions struct {
	DSN      string
	Password string
	Debug    bool
}

// Init creates the chunks table. Called by the ingestion path, not per query.
func (s *PgVectorStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*chunkRow)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("create chunks table: %w", err)
	}
	return nil
}

func (s *PgVectorStore) Search(ctx context.Context, embedding []float32, f Filter, topK int) ([]models.RetrievedChunk, error) {
	vec := vectorLiteral(embedding)

	var rows []chunkRow
	q := s.db.NewSelect().
		Model(&rows).
		ColumnExpr("c.*").
		ColumnExpr("embedding <=> ?::vector AS distance", vec)

	where := f.where()
	if grade, ok := where["grade"]; ok {
		q = q.Where("grade = ?", atoi(grade))
	}
	if subject, ok := where["subject"]; ok {
		q = q.Where("subject = ?", subject)
	}
	if language, ok := where["language"]; ok {
		q = q.Where("language = ?", language)
	}

	err := q.OrderExpr("embedding <=> ?::vector", vec).
		Limit(topK).
		Scan(ctx)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	chunks := make([]models.RetrievedChunk, 0, len(rows))
	for _, row := range rows {
		chunks = append(chunks, models.RetrievedChunk{
			ChunkID: row.ID,
			Text:    row.Text,
			Metadata: models.ChunkMetadata{
				Chapter:    row.Chapter,
				Section:    row.Section,
				Page:       row.PageNum,
				Grade:      row.Grade,
				Subject:    row.Subject,
				Language:   row.Language,
				ChunkIndex: row.ChunkIndex,
				TokenCount: row.TokenCount,
				SourceFile: row.SourceFile,
			},
			Distance: row.Distance,
		})
	}
	return chunks, nil
}

func (s *PgVectorStore) Add(ctx context.Context, chunks []IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]chunkRow, 0, len(chunks))
	for _, chunk := range chunks {
		rows = append(rows, chunkRow{
			ID:         chunk.ID,
			Text:       chunk.Text,
			Embedding:  chunk.Embedding,
			Grade:      chunk.Metadata.Grade,
			Subject:    chunk.Metadata.Subject,
			Language:   chunk.Metadata.Language,
			Chapter:    chunk.Metadata.Chapter,
			Section:    chunk.Metadata.Section,
			PageNum:    chunk.Metadata.Page,
			ChunkIndex: chunk.Metadata.ChunkIndex,
			TokenCount: chunk.Metadata.TokenCount,
			SourceFile: chunk.Metadata.SourceFile,
		})
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}

func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*chunkRow)(nil)).Count(ctx)
	if err != nil {
		return 0, &RetrievalError{Err: err}
	}
	return count, nil
}

func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// vectorLiteral renders an embedding in pgvector's input format.
func vectorLiteral(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
