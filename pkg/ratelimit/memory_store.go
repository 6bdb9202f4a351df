package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used in tests and single-instance
// deployments. It mirrors the Redis store's semantics, including key
// expiry after the window.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

type memoryWindow struct {
	timestamps []time.Time
	expiresAt  time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*memoryWindow)}
}

func (s *MemoryStore) PruneAndCount(ctx context.Context, key string, windowStart time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return 0, nil
	}
	if time.Now().After(w.expiresAt) {
		delete(s.windows, key)
		return 0, nil
	}

	kept := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	w.timestamps = kept
	return int64(len(kept)), nil
}

func (s *MemoryStore) Record(ctx context.Context, key string, ts time.Time, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		w = &memoryWindow{}
		s.windows[key] = w
	}
	w.timestamps = append(w.timestamps, ts)
	w.expiresAt = ts.Add(window)
	return nil
}

func (s *MemoryStore) OldestTimestamp(ctx context.Context, key string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || len(w.timestamps) == 0 {
		return time.Time{}, false, nil
	}

	oldest := w.timestamps[0]
	for _, ts := range w.timestamps[1:] {
		if ts.Before(oldest) {
			oldest = ts
		}
	}
	return oldest, true, nil
}

func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
	return nil
}
