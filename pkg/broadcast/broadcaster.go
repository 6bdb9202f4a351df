package broadcast

import (
	"context"
	"log/slog"
	"time"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/logger"
)

// Broadcaster provides the team/user fanout primitives consumed by the
// notification system and the domain event translators.
//
// All methods are fire-and-forget: faults (including a missing registry)
// are logged and swallowed so a broken live-push path can never fail the
// caller's primary transaction.
type Broadcaster struct {
	registry *Registry
	log      *slog.Logger
}

// BroadcasterOption configures a Broadcaster.
type BroadcasterOption func(*Broadcaster)

// WithBroadcasterLogger sets the logger.
func WithBroadcasterLogger(log *slog.Logger) BroadcasterOption {
	return func(b *Broadcaster) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBroadcaster creates a Broadcaster over the given registry. A nil
// registry is tolerated; every broadcast then degrades to an error log.
func NewBroadcaster(registry *Registry, opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		registry: registry,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BroadcastToTeam emits the event to every connection in the tenant's room.
func (b *Broadcaster) BroadcastToTeam(ctx context.Context, tenantID, event string, payload map[string]any) {
	b.publish(ctx, TeamRoom(tenantID), event, payload)
}

// BroadcastToUser emits the event to every connection in the user's room.
func (b *Broadcaster) BroadcastToUser(ctx context.Context, userID, event string, payload map[string]any) {
	b.publish(ctx, UserRoom(userID), event, payload)
}

// BatchBroadcast emits a sequence of events to the tenant's room.
func (b *Broadcaster) BatchBroadcast(ctx context.Context, tenantID string, events []Event) {
	for _, ev := range events {
		b.publish(ctx, TeamRoom(tenantID), ev.Type, ev.Payload)
	}
}

func (b *Broadcaster) publish(ctx context.Context, room, event string, payload map[string]any) {
	if b.registry == nil {
		b.log.LogAttrs(ctx, slog.LevelError, "broadcast skipped: connection registry not initialized",
			logger.Room(room),
			logger.EventType(event),
		)
		return
	}

	now := time.Now()

	// Copy so the server-assigned timestamp never leaks into the caller's map.
	stamped := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		stamped[k] = v
	}
	stamped["timestamp"] = now

	env := Envelope{
		Event:     event,
		Payload:   stamped,
		Timestamp: now,
	}

	if err := b.registry.Publish(ctx, room, env); err != nil {
		b.log.LogAttrs(ctx, slog.LevelError, "broadcast failed",
			logger.Room(room),
			logger.EventType(event),
			logger.Error(err),
		)
	}
}
