package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigurationError reports a missing or invalid startup requirement.
// It is fatal: the service must not start without the resource it names.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Database    DatabaseConfig    `yaml:"database"`
	EmbedLLM    LLMConfig         `yaml:"embed_llm"`
	GenLLM      LLMConfig         `yaml:"gen_llm"`
	RAG         RAGConfig         `yaml:"rag"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// VectorStoreConfig selects and configures the index backend.
type VectorStoreConfig struct {
	Backend        string `yaml:"backend"` // "chromem" or "pgvector"
	Path           string `yaml:"path"`
	Collection     string `yaml:"collection"`
	InMemory       bool   `yaml:"in_memory"`
	EncryptionKey  string `yaml:"encryption_key"`
	CorpusLanguage string `yaml:"corpus_language"`
	VectorSize     int    `yaml:"vector_size"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "ollama" or "openai"
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	TopK        int     `yaml:"top_k"`
	ContextSize int     `yaml:"context_size"`
}

type RAGConfig struct {
	TopK            int `yaml:"top_k"`
	MaxContextChars int `yaml:"max_context_chars"`
	MaxChunkChars   int `yaml:"max_chunk_chars"`
	ChunkSize       int `yaml:"chunk_size"`
	ChunkOverlap    int `yaml:"chunk_overlap"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Field: "config file", Err: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Field: "config file", Err: err}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Validate checks the requirements that would otherwise surface as faults
// deep inside a request.
func (c *Config) Validate() error {
	if c.EmbedLLM.Model == "" {
		return &ConfigurationError{Field: "embed_llm.model", Err: fmt.Errorf("embedding model is required")}
	}
	if c.GenLLM.Model == "" {
		return &ConfigurationError{Field: "gen_llm.model", Err: fmt.Errorf("generation model is required")}
	}
	switch c.VectorStore.Backend {
	case "chromem":
		if !c.VectorStore.InMemory && c.VectorStore.Path == "" {
			return &ConfigurationError{Field: "vector_store.path", Err: fmt.Errorf("persistent chromem store needs a path")}
		}
	case "pgvector":
		if c.Database.DSN == "" {
			return &ConfigurationError{Field: "database.dsn", Err: fmt.Errorf("pgvector backend needs a DSN")}
		}
	default:
		return &ConfigurationError{Field: "vector_store.backend", Err: fmt.Errorf("unknown backend %q", c.VectorStore.Backend)}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.VectorStore.Backend == "" {
		c.VectorStore.Backend = "chromem"
	}
	if c.VectorStore.Collection == "" {
		c.VectorStore.Collection = "ncert_chunks"
	}
	if c.VectorStore.CorpusLanguage == "" {
		c.VectorStore.CorpusLanguage = "english"
	}
	if c.VectorStore.VectorSize == 0 {
		c.VectorStore.VectorSize = 1024
	}
	if c.GenLLM.Provider == "" {
		c.GenLLM.Provider = "openai"
	}
	if c.EmbedLLM.Provider == "" {
		c.EmbedLLM.Provider = "ollama"
	}
	if c.GenLLM.MaxTokens == 0 {
		c.GenLLM.MaxTokens = 512
	}
	if c.GenLLM.Temperature == 0 {
		c.GenLLM.Temperature = 0.3
	}
	if c.GenLLM.TopP == 0 {
		c.GenLLM.TopP = 0.95
	}
	if c.GenLLM.TopK == 0 {
		c.GenLLM.TopK = 40
	}
	if c.GenLLM.ContextSize == 0 {
		c.GenLLM.ContextSize = 4096
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = 3
	}
	if c.RAG.MaxContextChars == 0 {
		c.RAG.MaxContextChars = 3500
	}
	if c.RAG.MaxChunkChars == 0 {
		c.RAG.MaxChunkChars = 800
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = 1000
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = 500
	}
}
