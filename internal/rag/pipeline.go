// Package rag runs one query through the full pipeline: canonicalize,
// retrieve, assemble context, build the prompt, generate, sanitize, and
// format citations. Every run is linear and synchronous; the only shared
// state is the long-lived store, embedder, and generator handles injected
// at construction.
package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ncert-rag/internal/citation"
	"ncert-rag/internal/config"
	"ncert-rag/internal/glossary"
	"ncert-rag/internal/index"
	"ncert-rag/internal/llm"
	"ncert-rag/internal/models"
	"ncert-rag/internal/prompt"
	"ncert-rag/internal/sanitize"
)

// Fixed confidence reported for generated answers.
const answerConfidence = 0.9

// Hindi generation runs with a tighter retrieval budget.
const hindiTopKCap = 3

const defaultSubject = "science"

// Embedder turns a canonical search string into a fixed-width vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator is the generation adapter surface the pipeline needs.
type Generator interface {
	Generate(ctx context.Context, promptText string, cfg llm.SamplingConfig) models.GenerationResult
	GenerateStream(ctx context.Context, promptText string, cfg llm.SamplingConfig, fn func(fragment string) error) error
	DefaultSampling() llm.SamplingConfig
	ModelInfo() llm.ModelInfo
}

// Pipeline holds the process-wide collaborator handles. It carries no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	store     index.Store
	embedder  Embedder
	generator Generator
	cfg       *config.Config
}

func NewPipeline(store index.Store, embedder Embedder, generator Generator, cfg *config.Config) *Pipeline {
	return &Pipeline{
		store:     store,
		embedder:  embedder,
		generator: generator,
		cfg:       cfg,
	}
}

// Answer processes one student query end to end. The requested response
// language always wins over the detected query language. A generation
// failure degrades the answer but still returns citations; a retrieval
// failure terminates the query with a single error result.
func (p *Pipeline) Answer(ctx context.Context, q models.Query) (*models.QueryResponse, error) {
	start := time.Now()

	responseLanguage := q.Language
	if responseLanguage == "" {
		responseLanguage = models.LanguageEnglish
	}
	queryLanguage := glossary.DetectLanguage(q.Text)

	log.Info().
		Str("query_language", queryLanguage).
		Str("response_language", responseLanguage).
		Int("grade", q.Grade).
		Str("subject", q.Subject).
		Msg("Processing query")

	chunks, err := p.retrieve(ctx, q, responseLanguage)
	if err != nil {
		return nil, err
	}

	contextText := prompt.AssembleContext(chunks, responseLanguage, p.cfg.RAG.MaxContextChars, p.cfg.RAG.MaxChunkChars)

	var terms []glossary.Pair
	if glossary.IsHindi(responseLanguage) {
		terms = glossary.ResponseTerms()
	}

	subject := q.Subject
	if subject == "" {
		subject = defaultSubject
	}
	promptText := prompt.Build(responseLanguage, contextText, q.Text, q.Grade, subject, terms)

	result := p.generator.Generate(ctx, promptText, p.generator.DefaultSampling())
	answer := result.Answer
	if result.Success {
		answer = sanitize.Clean(result.Answer, responseLanguage, terms)
	} else {
		log.Error().Str("detail", result.Error).Msg("Generation failed, returning degraded answer")
	}

	return &models.QueryResponse{
		Answer: answer,
		Metadata: models.QueryMetadata{
			Grade:            q.Grade,
			Subject:          q.Subject,
			Language:         responseLanguage,
			QueryLanguage:    queryLanguage,
			Model:            result.Model,
			TokensUsed:       result.TokensUsed,
			Confidence:       answerConfidence,
			ChunksRetrieved:  len(chunks),
			ProcessingTimeMS: time.Since(start).Milliseconds(),
		},
		Citations:    citation.Format(chunks, q.Grade, q.Subject),
		SourceChunks: citation.FormatSourceChunks(chunks),
	}, nil
}

// AnswerStream runs the same retrieval path, then streams raw generated
// fragments to fn. Fragments are not sanitized; a consumer that stops early
// simply halts production.
func (p *Pipeline) AnswerStream(ctx context.Context, q models.Query, fn func(fragment string) error) error {
	responseLanguage := q.Language
	if responseLanguage == "" {
		responseLanguage = models.LanguageEnglish
	}

	chunks, err := p.retrieve(ctx, q, responseLanguage)
	if err != nil {
		return err
	}

	contextText := prompt.AssembleContext(chunks, responseLanguage, p.cfg.RAG.MaxContextChars, p.cfg.RAG.MaxChunkChars)
	subject := q.Subject
	if subject == "" {
		subject = defaultSubject
	}
	promptText := prompt.Build(responseLanguage, contextText, q.Text, q.Grade, subject, nil)

	return p.generator.GenerateStream(ctx, promptText, p.generator.DefaultSampling(), fn)
}

// DocumentCount reports how many chunks the index holds.
func (p *Pipeline) DocumentCount(ctx context.Context) (int, error) {
	return p.store.Count(ctx)
}

// ModelInfo reports the generation model configuration.
func (p *Pipeline) ModelInfo() llm.ModelInfo {
	return p.generator.ModelInfo()
}

// retrieve embeds the canonical search string and searches the corpus.
// The corpus indexing language is fixed by configuration; it is never the
// user's response language.
func (p *Pipeline) retrieve(ctx context.Context, q models.Query, responseLanguage string) ([]models.RetrievedChunk, error) {
	topK := q.TopK
	if topK <= 0 {
		topK = p.cfg.RAG.TopK
	}
	if glossary.IsHindi(responseLanguage) && topK > hindiTopKCap {
		topK = hindiTopKCap
	}

	searchQuery := glossary.CanonicalizeQuery(q.Text)
	if searchQuery != q.Text {
		log.Info().Str("search_query", searchQuery).Msg("Canonicalized query for retrieval")
	}

	embeddingVec, err := p.embedder.EmbedQuery(ctx, searchQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := p.store.Search(ctx, embeddingVec, index.Filter{
		Grade:    q.Grade,
		Subject:  q.Subject,
		Language: p.cfg.VectorStore.CorpusLanguage,
	}, topK)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("chunks", len(chunks)).Msg("Retrieved context chunks")
	return chunks, nil
}
