package models

import "time"

// IndexInfo describes a built index.
type IndexInfo struct {
	ID               string    `json:"id"`
	NumChunks        int       `json:"num_chunks"`
	EmbeddingModelID string    `json:"embedding_model"`
	VectorStoreType  string    `json:"vectorstore_type"`
	Dimensions       int       `json:"dimensions"`
	BuiltAt          time.Time `json:"built_at"`
}

// ScoredChunk is a retrieval hit.
type ScoredChunk struct {
	Chunk      Chunk   `json:"chunk"`
	Similarity float32 `json:"similarity"`
}

// Source is a retrieved chunk as shown next to an answer.
type Source struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Format  Format `json:"format"`
}

type AnswerResult struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a session's chat history.
type Message struct {
	Role    Role     `json:"role"`
	Content string   `json:"content"`
	Sources []Source `json:"sources,omitempty"`
	IsError bool     `json:"is_error,omitempty"`
}
