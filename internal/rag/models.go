package rag

import "time"

// Role identifica o autor de uma mensagem no histórico da sessão.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a session history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Document
// Arquivo enviado via /upload que o serviço usa como base de conhecimento.
type Document struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"modTime"`
}

// Chunk is a bounded slice of a document's text, the unit of embedding and retrieval.
type Chunk struct {
	DocumentID string    `json:"documentId"`
	Index      int       `json:"index"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
}

// ScoredChunk is a retrieval hit. Higher scores are more similar.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// GenerateRequest
// Payload da API /generate.
type GenerateRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

// GenerateResponse
// Resposta da API /generate.
type GenerateResponse struct {
	GeneratedText string `json:"generated_text"`
}
