package index

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"ncert-rag/internal/models"
)

const chromemCompress = false

// ChromemStore is the embedded vector store backend. The collection uses
// cosine space; similarity is converted to cosine distance at this boundary
// so the rest of the pipeline only ever sees distances in [0,2].
type ChromemStore struct {
	db            *chromem.DB
	collection    *chromem.Collection
	path          string
	encryptionKey string
	exportPath    string
}

// NewChromemStore opens (or creates) the collection. With inMemory set the
// store lives only for the process and can be exported on Close when an
// encryption key is configured.
func NewChromemStore(path, collectionName string, inMemory bool, encryptionKey string) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, chromemCompress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	return &ChromemStore{
		db:            db,
		collection:    collection,
		path:          path,
		encryptionKey: encryptionKey,
		exportPath:    filepath.Join(path, collectionName+".chromem"),
	}, nil
}

func (s *ChromemStore) Search(ctx context.Context, embedding []float32, f Filter, topK int) ([]models.RetrievedChunk, error) {
	if s.collection == nil {
		return nil, &RetrievalError{Err: fmt.Errorf("collection not initialized")}
	}
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       topK,
		Where:          f.where(),
	})
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	chunks := make([]models.RetrievedChunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, models.RetrievedChunk{
			ChunkID:  res.ID,
			Text:     res.Content,
			Metadata: metadataFromMap(res.Metadata),
			Distance: 1 - float64(res.Similarity),
		})
	}
	return chunks, nil
}

func (s *ChromemStore) Add(ctx context.Context, chunks []IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Text,
			Metadata:  flattenMetadata(chunk.Metadata, chunk.Extra),
			Embedding: chunk.Embedding,
		})
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	if s.collection == nil {
		return 0, &RetrievalError{Err: fmt.Errorf("collection not initialized")}
	}
	return s.collection.Count(), nil
}

// Export writes an encrypted snapshot of the collection, used to persist an
// in-memory store after offline ingestion.
func (s *ChromemStore) Export(ctx context.Context) error {
	if s.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	log.Debug().Str("path", s.exportPath).Msg("Exporting collection")
	if err := s.db.ExportToFile(s.exportPath, chromemCompress, s.encryptionKey, s.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

func (s *ChromemStore) Close() error {
	// Persistent chromem writes through on every add; nothing to flush.
	return nil
}
