// Package llm adapts an external text-generation model behind a structured
// result boundary: callers never see a raw fault from the model client.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"ncert-rag/internal/config"
	"ncert-rag/internal/models"
	"ncert-rag/internal/prompt"
)

// DegradedAnswer substitutes for the answer text whenever generation fails.
const DegradedAnswer = "Error: Could not generate response"

// requiredStops always terminate generation: the envelope's own boundary
// token plus the localized section headers, so the model cannot continue
// past a simulated next turn.
var requiredStops = []string{
	prompt.InstOpen,
	"Student:",
	"Context:",
	"संदर्भ:",
	"छात्र का प्रश्न:",
}

// SamplingConfig carries the sampling parameters for one generation call.
type SamplingConfig struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
	Stop        []string
}

// ModelInfo describes the configured generation model.
type ModelInfo struct {
	Model              string   `json:"model"`
	ContextWindow      int      `json:"context_window"`
	MaxTokens          int      `json:"max_tokens"`
	Temperature        float64  `json:"temperature"`
	TopP               float64  `json:"top_p"`
	TopK               int      `json:"top_k"`
	LanguagesSupported []string `json:"languages_supported"`
}

// contentGenerator is the slice of llms.Model the adapter needs; tests
// substitute a fake.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Generator wraps the generation collaborator. The handle is constructed
// once at startup and shared read-only across concurrent queries.
type Generator struct {
	model       contentGenerator
	modelName   string
	contextSize int
	defaults    SamplingConfig
}

// NewGenerator builds the generation collaborator selected by configuration.
func NewGenerator(cfg *config.LLMConfig) (*Generator, error) {
	var model contentGenerator
	var err error
	switch cfg.Provider {
	case "ollama":
		model, err = ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	default:
		model, err = openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize generation model: %w", err)
	}
	return newGenerator(model, cfg), nil
}

func newGenerator(model contentGenerator, cfg *config.LLMConfig) *Generator {
	return &Generator{
		model:       model,
		modelName:   cfg.Model,
		contextSize: cfg.ContextSize,
		defaults: SamplingConfig{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			TopK:        cfg.TopK,
		},
	}
}

// DefaultSampling returns the configured sampling parameters.
func (g *Generator) DefaultSampling() SamplingConfig {
	return g.defaults
}

// Generate runs one synchronous generation call. Any underlying failure is
// converted into a GenerationResult with Success=false and the degraded
// answer text; no retry is attempted.
func (g *Generator) Generate(ctx context.Context, promptText string, cfg SamplingConfig) (result models.GenerationResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Generation panicked")
			result = g.failure(fmt.Sprintf("panic: %v", r))
		}
	}()

	resp, err := g.model.GenerateContent(ctx, promptMessages(promptText), g.callOptions(cfg)...)
	if err != nil {
		log.Error().Err(err).Msg("Generation failed")
		return g.failure(err.Error())
	}
	if len(resp.Choices) == 0 {
		return g.failure("model returned no choices")
	}

	choice := resp.Choices[0]
	return models.GenerationResult{
		Answer:     strings.TrimSpace(choice.Content),
		TokensUsed: completionTokens(choice.GenerationInfo),
		Model:      g.modelName,
		Success:    true,
	}
}

// GenerateStream delivers generated text fragments to fn as they arrive.
// The sequence is forward-only, finite, and non-restartable; if fn returns
// an error, fragment production stops and the same error is returned with
// no other side effects.
func (g *Generator) GenerateStream(ctx context.Context, promptText string, cfg SamplingConfig, fn func(fragment string) error) error {
	opts := append(g.callOptions(cfg), llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
		return fn(string(chunk))
	}))
	if _, err := g.model.GenerateContent(ctx, promptMessages(promptText), opts...); err != nil {
		return fmt.Errorf("stream generation: %w", err)
	}
	return nil
}

// ModelInfo reports the static model configuration.
func (g *Generator) ModelInfo() ModelInfo {
	return ModelInfo{
		Model:              g.modelName,
		ContextWindow:      g.contextSize,
		MaxTokens:          g.defaults.MaxTokens,
		Temperature:        g.defaults.Temperature,
		TopP:               g.defaults.TopP,
		TopK:               g.defaults.TopK,
		LanguagesSupported: []string{"English", "Hindi"},
	}
}

func (g *Generator) failure(detail string) models.GenerationResult {
	return models.GenerationResult{
		Answer:  DegradedAnswer,
		Model:   g.modelName,
		Success: false,
		Error:   detail,
	}
}

func (g *Generator) callOptions(cfg SamplingConfig) []llms.CallOption {
	if cfg.MaxTokens == 0 {
		cfg = g.defaults
	}
	return []llms.CallOption{
		llms.WithMaxTokens(cfg.MaxTokens),
		llms.WithTemperature(cfg.Temperature),
		llms.WithTopP(cfg.TopP),
		llms.WithTopK(cfg.TopK),
		llms.WithStopWords(withRequiredStops(cfg.Stop)),
	}
}

func promptMessages(promptText string) []llms.MessageContent {
	return []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: promptText}},
		},
	}
}

// withRequiredStops merges the caller's stop set with the always-on stops.
func withRequiredStops(stops []string) []string {
	merged := make([]string, 0, len(stops)+len(requiredStops))
	seen := make(map[string]bool)
	for _, s := range append(append([]string{}, requiredStops...), stops...) {
		if !seen[s] {
			seen[s] = true
			merged = append(merged, s)
		}
	}
	return merged
}

func completionTokens(info map[string]any) int {
	for _, key := range []string{"CompletionTokens", "completion_tokens"} {
		switch v := info[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
