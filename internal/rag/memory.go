package rag

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process vector index keyed by document fingerprint.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]Chunk)}
}

func (s *MemoryStore) Indexed(_ context.Context, documentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[documentID]
	return ok, nil
}

// Store replaces whatever was indexed for documentID.
func (s *MemoryStore) Store(_ context.Context, documentID string, chunks []Chunk) error {
	cp := make([]Chunk, len(chunks))
	copy(cp, chunks)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[documentID] = cp
	return nil
}

func (s *MemoryStore) Search(_ context.Context, documentID string, embedding []float32, limit int) ([]ScoredChunk, error) {
	if limit <= 0 {
		limit = DefaultTopK
	}

	s.mu.RLock()
	chunks := s.docs[documentID]
	results := make([]ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, ScoredChunk{Chunk: c, Score: cosineSimilarity(embedding, c.Embedding)})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ VectorStore = (*MemoryStore)(nil)
