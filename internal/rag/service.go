package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/josinaldojr/docqa/internal/metrics"
)

const DefaultTopK = 4

// Prompts are the system prompts of the two model calls of a query. System
// must contain the {context} placeholder.
type Prompts struct {
	System        string
	Contextualize string
}

type Options struct {
	Prompts      Prompts
	TopK         int
	ChunkSize    int
	ChunkOverlap int

	// EmbeddingModel names the provider/model producing the vectors. It is
	// part of the index key so switching models never reuses old vectors.
	EmbeddingModel string
}

type Service struct {
	docs       Documents
	store      VectorStore
	sessions   SessionStore
	embeddings Embedder
	llm        ChatModel

	prompts        Prompts
	topK           int
	splitter       *Splitter
	embeddingModel string

	sessionLocks *keyedMutex
	indexLocks   *keyedMutex
}

func NewService(
	docs Documents,
	store VectorStore,
	sessions SessionStore,
	embeddings Embedder,
	llm ChatModel,
	opts Options,
) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	return &Service{
		docs:         docs,
		store:        store,
		sessions:     sessions,
		embeddings:   embeddings,
		llm:          llm,
		prompts:        opts.Prompts,
		topK:           opts.TopK,
		splitter:       NewSplitter(opts.ChunkSize, opts.ChunkOverlap),
		embeddingModel: opts.EmbeddingModel,
		sessionLocks:   newKeyedMutex(),
		indexLocks:     newKeyedMutex(),
	}
}

// Generate answers req.Text from the current document, conditioned on the
// session's history, and records the exchange in that history.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}

	// history read → append must not interleave for the same session
	unlock := s.sessionLocks.Lock(sessionID)
	defer unlock()

	doc, err := s.docs.Current()
	if err != nil {
		return nil, err
	}

	docID, err := s.ensureIndexed(ctx, doc)
	if err != nil {
		return nil, err
	}

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	query, err := s.contextualize(ctx, history, text)
	if err != nil {
		return nil, err
	}

	vec, err := s.embeddings.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.store.Search(ctx, docID, vec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", doc.Name, err)
	}

	answer, err := s.llm.Chat(ctx, s.answerPrompt(hits, text), history, text)
	if err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}
	answer = strings.TrimSpace(answer)

	err = s.sessions.Append(ctx, sessionID,
		Message{Role: RoleUser, Content: text},
		Message{Role: RoleAssistant, Content: answer},
	)
	if err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}

	return &GenerateResponse{GeneratedText: answer}, nil
}

// Index makes sure doc is in the vector store and returns its index key.
func (s *Service) Index(ctx context.Context, doc Document) (string, error) {
	return s.ensureIndexed(ctx, doc)
}

func (s *Service) ensureIndexed(ctx context.Context, doc Document) (string, error) {
	fingerprint, err := s.docs.Fingerprint(doc)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", doc.Name, err)
	}
	docID := s.indexKey(fingerprint)

	unlock := s.indexLocks.Lock(docID)
	defer unlock()

	ok, err := s.store.Indexed(ctx, docID)
	if err != nil {
		return "", fmt.Errorf("check index for %s: %w", doc.Name, err)
	}
	if ok {
		metrics.IndexCacheHits.Inc()
		return docID, nil
	}

	text, err := s.docs.Text(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUnreadableDocument, doc.Name, err)
	}

	pieces := s.splitter.Split(text)
	if len(pieces) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyDocument, doc.Name)
	}

	vectors, err := s.embeddings.EmbedDocuments(ctx, pieces)
	if err != nil {
		return "", fmt.Errorf("embed %s: %w", doc.Name, err)
	}
	if len(vectors) != len(pieces) {
		return "", fmt.Errorf("embed %s: got %d vectors for %d chunks", doc.Name, len(vectors), len(pieces))
	}

	chunks := make([]Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = Chunk{
			DocumentID: docID,
			Index:      i,
			Content:    p,
			Embedding:  vectors[i],
		}
	}

	if err := s.store.Store(ctx, docID, chunks); err != nil {
		return "", fmt.Errorf("store %s: %w", doc.Name, err)
	}

	metrics.IndexBuilds.Inc()
	log.Printf("indexed %s: %d chunks (id=%s)", doc.Name, len(chunks), shortID(docID))
	return docID, nil
}

// indexKey scopes a document fingerprint to the embedding model.
func (s *Service) indexKey(fingerprint string) string {
	if s.embeddingModel == "" {
		return fingerprint
	}
	return fingerprint + ":" + s.embeddingModel
}

// contextualize rewrites a follow-up into a standalone question using the
// history. Without history the input is already standalone.
func (s *Service) contextualize(ctx context.Context, history []Message, input string) (string, error) {
	if len(history) == 0 {
		return input, nil
	}

	q, err := s.llm.Chat(ctx, s.prompts.Contextualize, history, input)
	if err != nil {
		return "", fmt.Errorf("contextualize: %w", err)
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return input, nil
	}
	return q, nil
}

func (s *Service) answerPrompt(hits []ScoredChunk, question string) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Content
	}

	system := strings.ReplaceAll(s.prompts.System, "{context}", strings.Join(parts, "\n\n"))
	if hint := languageHint(question); hint != "" {
		system += "\n\n" + hint
	}
	return system
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
