package store

import (
	"context"
	"sync"

	"github.com/zhouzirui/hands-on/backend/internal/model/conversation"
)

// MemoryStore keeps conversations in process memory. Entries live until deleted.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[conversation.Key]*conversation.Conversation
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[conversation.Key]*conversation.Conversation)}
}

func (s *MemoryStore) Get(_ context.Context, key conversation.Key) (*conversation.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.convs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return conv.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, conv *conversation.Conversation) error {
	s.mu.Lock()
	s.convs[conv.Key] = conv.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key conversation.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[key]; !ok {
		return ErrNotFound
	}
	delete(s.convs, key)
	return nil
}

// Len reports how many conversations are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}
