package embedding

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"ncert-rag/internal/config"
)

// NewEmbedder builds the embedding collaborator selected by configuration.
func NewEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	if cfg.Provider == "openai" {
		return NewOpenAIEmbedder(cfg)
	}
	return NewOllamaEmbedder(cfg)
}

// NewOllamaEmbedder embeds through a local ollama server.
func NewOllamaEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().
		Str("base_url", cfg.BaseURL).
		Str("embedding_model", cfg.Model).
		Msg("Initializing ollama embedder")

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// NewOpenAIEmbedder embeds through any OpenAI-compatible endpoint.
func NewOpenAIEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().
		Str("base_url", cfg.BaseURL).
		Str("embedding_model", cfg.Model).
		Msg("Initializing openai embedder")

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// EmbedChunks embeds a batch of chunk texts during ingestion.
func EmbedChunks(ctx context.Context, embedder *embeddings.EmbedderImpl, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return embedder.EmbedDocuments(ctx, texts)
}
