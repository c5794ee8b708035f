package models

// Response languages supported by the pipeline. The corpus itself is indexed
// in English regardless of the response language a student asks for.
const (
	LanguageEnglish = "english"
	LanguageHindi   = "hindi"
)

// Query is a single student question entering the pipeline.
type Query struct {
	Text     string `json:"query"`
	Grade    int    `json:"grade"`
	Subject  string `json:"subject"`
	Language string `json:"language"`
	TopK     int    `json:"top_k"`
}

// ChunkMetadata is the flattened, typed metadata record attached to every
// indexed chunk. Nested metadata is flattened once at ingestion time using
// the meta_ key prefix convention; it is never re-derived per query.
type ChunkMetadata struct {
	Chapter    string `json:"chapter"`
	Section    string `json:"section"`
	Page       int    `json:"page"`
	Grade      int    `json:"grade"`
	Subject    string `json:"subject"`
	Language   string `json:"language"`
	ChunkIndex int    `json:"chunk_index"`
	TokenCount int    `json:"token_count"`
	SourceFile string `json:"source_file"`
}

// RetrievedChunk is one nearest-neighbor search hit. Distance is cosine
// distance in [0,2], smaller is better.
type RetrievedChunk struct {
	ChunkID  string        `json:"chunk_id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}

// GenerationResult is the structured outcome of one generation call.
// Failures are carried here instead of propagating as raw errors.
type GenerationResult struct {
	Answer     string `json:"answer"`
	TokensUsed int    `json:"tokens_used"`
	Model      string `json:"model"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Citation is a display-ready source reference, ranked 1..n by relevance.
type Citation struct {
	ID        int     `json:"id"`
	Source    string  `json:"source"`
	Chapter   string  `json:"chapter"`
	Section   string  `json:"section"`
	Page      int     `json:"page"`
	Excerpt   string  `json:"excerpt"`
	Relevance float64 `json:"relevance"`
	ChunkID   string  `json:"chunk_id"`
}

// SourceChunk is the full-text companion to a Citation for detailed viewing.
type SourceChunk struct {
	ChunkID   string        `json:"chunk_id"`
	FullText  string        `json:"full_text"`
	Metadata  ChunkMetadata `json:"metadata"`
	Relevance float64       `json:"relevance"`
}

// QueryMetadata reports how a query was processed.
type QueryMetadata struct {
	Grade            int     `json:"grade"`
	Subject          string  `json:"subject"`
	Language         string  `json:"language"`
	QueryLanguage    string  `json:"query_language"`
	Model            string  `json:"model"`
	TokensUsed       int     `json:"tokens_used"`
	Confidence       float64 `json:"confidence"`
	ChunksRetrieved  int     `json:"chunks_retrieved"`
	ProcessingTimeMS int64   `json:"processing_time_ms"`
}

// QueryResponse is the final answer returned for one query.
type QueryResponse struct {
	Answer       string        `json:"answer"`
	Metadata     QueryMetadata `json:"metadata"`
	Citations    []Citation    `json:"citations"`
	SourceChunks []SourceChunk `json:"source_chunks"`
}

// Chunk is a parsed document fragment produced during ingestion, before
// embedding and metadata flattening.
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
	TokenCount int
}
