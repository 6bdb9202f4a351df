package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultBufferSize = 100

// Registry tracks live connections by room. Transport adapters (the
// application's socket server) subscribe their connections to rooms;
// publishers fan envelopes out to every subscriber of a room.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*room
	bufferSize int
	closed     bool

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

type room struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBufferSize sets the per-subscriber channel buffer.
func WithBufferSize(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.bufferSize = n
		}
	}
}

// WithCleanupInterval enables periodic removal of empty rooms.
func WithCleanupInterval(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.cleanupInterval = d
		}
	}
}

// NewRegistry creates an empty connection registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rooms:       make(map[string]*room),
		bufferSize:  defaultBufferSize,
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.cleanupInterval > 0 {
		go r.cleanupLoop()
	}
	return r
}

// Subscribe registers a new connection in the given room. The subscription
// is cleaned up when ctx is cancelled or Close is called on the subscriber.
func (r *Registry) Subscribe(ctx context.Context, roomName string) (*Subscriber, error) {
	if roomName == "" {
		return nil, ErrRoomRequired
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	rm, ok := r.rooms[roomName]
	if !ok {
		rm = &room{subs: make(map[string]*Subscriber)}
		r.rooms[roomName] = rm
	}
	r.mu.Unlock()

	sub := &Subscriber{
		id:       uuid.New().String(),
		room:     roomName,
		events:   make(chan Envelope, r.bufferSize),
		registry: r,
	}

	rm.mu.Lock()
	rm.subs[sub.id] = sub
	rm.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()

	return sub, nil
}

// Publish fans the envelope out to every subscriber of the room. Sends are
// non-blocking: a subscriber whose buffer is full misses the event rather
// than stalling the publisher. Rooms with no subscribers are not an error.
func (r *Registry) Publish(ctx context.Context, roomName string, env Envelope) error {
	if roomName == "" {
		return ErrRoomRequired
	}

	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return ErrRegistryClosed
	}
	rm, ok := r.rooms[roomName]
	r.mu.RUnlock()

	if !ok {
		return nil
	}

	rm.mu.RLock()
	subs := make([]*Subscriber, 0, len(rm.subs))
	for _, sub := range rm.subs {
		subs = append(subs, sub)
	}
	rm.mu.RUnlock()

	for _, sub := range subs {
		sub.send(env)
	}
	return nil
}

// SubscriberCount returns the number of live subscribers in a room.
func (r *Registry) SubscriberCount(roomName string) int {
	r.mu.RLock()
	rm, ok := r.rooms[roomName]
	r.mu.RUnlock()

	if !ok {
		return 0
	}

	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.subs)
}

// Close shuts down the registry and all subscribers.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	rooms := make([]*room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	r.mu.Unlock()

	r.cleanupOnce.Do(func() { close(r.stopCleanup) })

	for _, rm := range rooms {
		rm.mu.RLock()
		subs := make([]*Subscriber, 0, len(rm.subs))
		for _, sub := range rm.subs {
			subs = append(subs, sub)
		}
		rm.mu.RUnlock()

		for _, sub := range subs {
			_ = sub.Close()
		}
	}
	return nil
}

func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.removeEmptyRooms()
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *Registry) removeEmptyRooms() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, rm := range r.rooms {
		rm.mu.RLock()
		empty := len(rm.subs) == 0
		rm.mu.RUnlock()

		if empty {
			delete(r.rooms, name)
		}
	}
}

// Subscriber is one live connection's membership in a room.
type Subscriber struct {
	id       string
	room     string
	events   chan Envelope
	registry *Registry

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// ID returns the unique subscriber identifier.
func (s *Subscriber) ID() string { return s.id }

// Room returns the room this subscriber belongs to.
func (s *Subscriber) Room() string { return s.room }

// Events returns the channel delivering envelopes published to the room.
// The channel is closed when the subscriber closes.
func (s *Subscriber) Events() <-chan Envelope { return s.events }

// Close removes the subscriber from its room and closes the event channel.
// Idempotent.
func (s *Subscriber) Close() error {
	s.once.Do(func() {
		s.registry.mu.RLock()
		rm, ok := s.registry.rooms[s.room]
		s.registry.mu.RUnlock()

		if ok {
			rm.mu.Lock()
			delete(rm.subs, s.id)
			rm.mu.Unlock()
		}

		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
	return nil
}

// send delivers without blocking; a full buffer drops the envelope.
func (s *Subscriber) send(env Envelope) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.events <- env:
		return true
	default:
		return false
	}
}
