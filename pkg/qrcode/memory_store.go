package qrcode

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process TokenStore used in tests. It honors the
// store-level TTL the same way the Redis store does.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
}

type memoryToken struct {
	token     Token
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]memoryToken)}
}

func (s *MemoryStore) Set(ctx context.Context, token *Token, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token.SessionID] = memoryToken{
		token:     *token,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[sessionID]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.tokens, sessionID)
		return nil, nil
	}

	token := entry.token
	return &token, nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, sessionID)
	return nil
}

func (s *MemoryStore) TTL(ctx context.Context, sessionID string) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[sessionID]
	if !ok {
		return 0, false, nil
	}

	remaining := time.Until(entry.expiresAt)
	if remaining <= 0 {
		delete(s.tokens, sessionID)
		return 0, false, nil
	}
	return remaining, true, nil
}
