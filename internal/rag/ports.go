package rag

import "context"

type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChatModel answers input given a system prompt and the prior turns of a conversation.
type ChatModel interface {
	Chat(ctx context.Context, system string, history []Message, input string) (string, error)
}

type VectorStore interface {
	Indexed(ctx context.Context, documentID string) (bool, error)
	Store(ctx context.Context, documentID string, chunks []Chunk) error
	Search(ctx context.Context, documentID string, embedding []float32, limit int) ([]ScoredChunk, error)
}

type SessionStore interface {
	History(ctx context.Context, sessionID string) ([]Message, error)
	Append(ctx context.Context, sessionID string, msgs ...Message) error
}

// Documents resolves the document the service answers from and reads it.
type Documents interface {
	Current() (Document, error)
	Fingerprint(doc Document) (string, error)
	Text(doc Document) (string, error)
}
