package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/broadcast"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/logger"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
)

// ErrNotifierRequired is returned when a translator is constructed without
// a notification service.
var ErrNotifierRequired = errors.New("notification service is required")

// Option configures a translator.
type Option func(*translator)

// WithLogger sets the logger used for swallowed delivery faults.
func WithLogger(log *slog.Logger) Option {
	return func(t *translator) {
		if log != nil {
			t.log = log
		}
	}
}

// translator holds the delivery dependencies shared by every event
// translator. Broadcasting and notifying are both best-effort from the
// caller's point of view: a translator method never fails the domain
// transition that invoked it.
type translator struct {
	broadcaster *broadcast.Broadcaster
	notifier    *notifications.Service
	log         *slog.Logger
}

func newTranslator(b *broadcast.Broadcaster, svc *notifications.Service, opts ...Option) (translator, error) {
	if svc == nil {
		return translator{}, ErrNotifierRequired
	}
	if b == nil {
		b = broadcast.NewBroadcaster(nil)
	}

	t := translator{
		broadcaster: b,
		notifier:    svc,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t, nil
}

// notify creates a notification from a mapping rule, logging failures
// instead of propagating them.
func (t *translator) notify(ctx context.Context, tenantID, userID string, rule notifyRule, title, message string, data map[string]any) {
	_, err := t.notifier.Create(ctx, notifications.CreateParams{
		TenantID: tenantID,
		UserID:   userID,
		Type:     rule.Type,
		Priority: rule.Priority,
		Category: rule.Category,
		Title:    title,
		Message:  message,
		Data:     data,
	})
	if err != nil {
		t.log.LogAttrs(ctx, slog.LevelError, "failed to create notification for domain event",
			logger.TenantID(tenantID),
			logger.Error(err),
		)
	}
}
