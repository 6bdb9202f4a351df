package notifications

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorage is an in-process Storage used in tests.
type MemoryStorage struct {
	mu   sync.RWMutex
	rows map[string]map[string]Notification // tenantID -> id -> row
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{rows: make(map[string]map[string]Notification)}
}

func (s *MemoryStorage) Create(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.rows[n.TenantID]
	if !ok {
		tenant = make(map[string]Notification)
		s.rows[n.TenantID] = tenant
	}
	tenant[n.ID] = n
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, tenantID, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.rows[tenantID][id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (s *MemoryStorage) Update(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.rows[n.TenantID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := tenant[n.ID]; !ok {
		return ErrNotFound
	}
	tenant[n.ID] = n
	return nil
}

func (s *MemoryStorage) List(ctx context.Context, tenantID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Notification, 0)
	for _, n := range s.rows[tenantID] {
		if opts.Matches(&n) {
			matched = append(matched, n)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	return page(matched, opts.Offset, opts.Limit), nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, tenantID, userID string) (int, error) {
	rows, err := s.List(ctx, tenantID, ListOptions{UserID: userID, UnreadOnly: true})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// MemoryPreferenceStore is an in-process PreferenceStore used in tests.
type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]Preferences // tenantID:userID -> row
}

// NewMemoryPreferenceStore creates an empty in-memory preference store.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{prefs: make(map[string]Preferences)}
}

func (s *MemoryPreferenceStore) Get(ctx context.Context, tenantID, userID string) (Preferences, error) {
	key := tenantID + ":" + userID

	s.mu.RLock()
	prefs, ok := s.prefs[key]
	s.mu.RUnlock()
	if ok {
		return prefs, nil
	}

	defaults := DefaultPreferences()
	s.mu.Lock()
	s.prefs[key] = defaults
	s.mu.Unlock()
	return defaults, nil
}

func (s *MemoryPreferenceStore) Set(ctx context.Context, tenantID, userID string, prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[tenantID+":"+userID] = prefs
	return nil
}
