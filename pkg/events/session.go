package events

import (
	"context"
	"fmt"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/broadcast"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
)

// SessionEvents translates session lifecycle transitions into broadcasts
// and notifications.
type SessionEvents struct {
	translator
}

// NewSessionEvents creates the session translator. The broadcaster may be
// nil; live push then degrades to logs.
func NewSessionEvents(b *broadcast.Broadcaster, svc *notifications.Service, opts ...Option) (*SessionEvents, error) {
	t, err := newTranslator(b, svc, opts...)
	if err != nil {
		return nil, err
	}
	return &SessionEvents{translator: t}, nil
}

// QRGenerated pushes a fresh QR code to the tenant's dashboards. QR codes
// are transient handshake material, so no notification is created.
func (e *SessionEvents) QRGenerated(ctx context.Context, tenantID, sessionID, qrCode string) {
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventQR, map[string]any{
		"sessionId": sessionID,
		"qrCode":    qrCode,
	})
}

// StatusChanged broadcasts every status move and notifies only on the
// transitions the rules table marks significant.
func (e *SessionEvents) StatusChanged(ctx context.Context, tenantID, sessionID, sessionName, from, to string) {
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventSessionStatus, map[string]any{
		"sessionId":   sessionID,
		"status":      to,
		"sessionName": sessionName,
	})

	rule, ok := sessionStatusRuleFor(from, to)
	if !ok {
		return
	}
	e.notify(ctx, tenantID, "", rule, rule.Title, fmt.Sprintf(rule.Message, sessionName), map[string]any{
		"sessionId": sessionID,
		"from":      from,
		"to":        to,
	})
}

// Authenticated reports a completed login handshake.
func (e *SessionEvents) Authenticated(ctx context.Context, tenantID, sessionID, sessionName, phoneNumber string) {
	payload := map[string]any{"sessionId": sessionID}
	if phoneNumber != "" {
		payload["phoneNumber"] = phoneNumber
	}
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventSessionAuthenticated, payload)

	e.notify(ctx, tenantID, "", authenticatedRule,
		authenticatedRule.Title,
		fmt.Sprintf(authenticatedRule.Message, sessionName),
		map[string]any{"sessionId": sessionID},
	)
}

// AuthFailed reports a failed login handshake.
func (e *SessionEvents) AuthFailed(ctx context.Context, tenantID, sessionID, sessionName, reason string) {
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventSessionStatus, map[string]any{
		"sessionId":   sessionID,
		"status":      SessionFailed,
		"sessionName": sessionName,
	})

	e.notify(ctx, tenantID, "", authFailedRule,
		authFailedRule.Title,
		fmt.Sprintf(authFailedRule.Message, sessionName, reason),
		map[string]any{"sessionId": sessionID, "reason": reason},
	)
}

// Disconnected reports a dropped session.
func (e *SessionEvents) Disconnected(ctx context.Context, tenantID, sessionID, sessionName, reason string) {
	payload := map[string]any{"sessionId": sessionID}
	if reason != "" {
		payload["reason"] = reason
	}
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventSessionDisconnected, payload)

	e.notify(ctx, tenantID, "", disconnectedRule,
		disconnectedRule.Title,
		fmt.Sprintf(disconnectedRule.Message, sessionName, reason),
		map[string]any{"sessionId": sessionID, "reason": reason},
	)
}
