package notifications

import (
	"sort"
	"sync"
)

// ringCapacity bounds the per-tenant fallback buffer, so memory stays
// fixed under a sustained store outage.
const ringCapacity = 100

type ring struct {
	entries [ringCapacity]Notification
	next    int
	size    int
}

func (r *ring) add(n Notification) {
	r.entries[r.next] = n
	r.next = (r.next + 1) % ringCapacity
	if r.size < ringCapacity {
		r.size++
	}
}

func (r *ring) snapshot() []Notification {
	out := make([]Notification, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.entries[i])
	}
	return out
}

// FallbackBuffer holds the most recent notifications per tenant in fixed
// rings. It is populated opportunistically by Create and consulted only
// when the shared store is unreachable.
type FallbackBuffer struct {
	mu      sync.RWMutex
	tenants map[string]*ring
}

// NewFallbackBuffer creates an empty fallback buffer.
func NewFallbackBuffer() *FallbackBuffer {
	return &FallbackBuffer{tenants: make(map[string]*ring)}
}

// Add records a notification in its tenant's ring, evicting the oldest
// entry once the ring is full.
func (b *FallbackBuffer) Add(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.tenants[n.TenantID]
	if !ok {
		r = &ring{}
		b.tenants[n.TenantID] = r
	}
	r.add(n)
}

// List returns the buffered notifications matching the filter,
// newest-first, paged like Storage.List.
func (b *FallbackBuffer) List(tenantID string, opts ListOptions) []Notification {
	b.mu.RLock()
	r, ok := b.tenants[tenantID]
	if !ok {
		b.mu.RUnlock()
		return []Notification{}
	}
	rows := r.snapshot()
	b.mu.RUnlock()

	matched := rows[:0]
	for i := range rows {
		if opts.Matches(&rows[i]) {
			matched = append(matched, rows[i])
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	return page(matched, opts.Offset, opts.Limit)
}

// CountUnread returns the number of buffered unread notifications visible
// to the given user.
func (b *FallbackBuffer) CountUnread(tenantID, userID string) int {
	return len(b.List(tenantID, ListOptions{UserID: userID, UnreadOnly: true}))
}
