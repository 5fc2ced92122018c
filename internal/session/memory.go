// Package session stores per-session chat history for the RAG service.
package session

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/josinaldojr/docqa/internal/rag"
)

const shardCount = 32

type shard struct {
	mu       sync.RWMutex
	sessions map[string][]rag.Message
}

// MemoryStore keeps history in process memory. Sessions are never evicted.
type MemoryStore struct {
	shards [shardCount]*shard
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[string][]rag.Message)}
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

// History returns a copy of the session's turns; unknown sessions are empty.
func (s *MemoryStore) History(_ context.Context, sessionID string) ([]rag.Message, error) {
	sh := s.shardFor(sessionID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	msgs := sh.sessions[sessionID]
	out := make([]rag.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, msgs ...rag.Message) error {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.sessions[sessionID] = append(sh.sessions[sessionID], msgs...)
	return nil
}

// Len reports how many sessions exist.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return n
}

var _ rag.SessionStore = (*MemoryStore)(nil)
