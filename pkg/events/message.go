package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/broadcast"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/logger"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
)

// Message is the wire shape of a single message inside
// whatsapp:message:new payloads.
type Message struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	ChatID         string    `json:"chatId"`
	ConversationID string    `json:"conversationId"`
	Type           string    `json:"type"`
	Body           string    `json:"body"`
	Direction      string    `json:"direction"`
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
}

// MessageEvents translates message lifecycle transitions.
type MessageEvents struct {
	translator
}

// NewMessageEvents creates the message translator.
func NewMessageEvents(b *broadcast.Broadcaster, svc *notifications.Service, opts ...Option) (*MessageEvents, error) {
	t, err := newTranslator(b, svc, opts...)
	if err != nil {
		return nil, err
	}
	return &MessageEvents{translator: t}, nil
}

// Received reports an inbound message. The notification is scoped to the
// conversation's assignee when one is set, otherwise it goes team-wide.
func (e *MessageEvents) Received(ctx context.Context, tenantID string, msg Message, assigneeID string) {
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventMessageNew, map[string]any{
		"conversationId": msg.ConversationID,
		"message": map[string]any{
			"id":        msg.ID,
			"sessionId": msg.SessionID,
			"chatId":    msg.ChatID,
			"type":      msg.Type,
			"body":      msg.Body,
			"direction": msg.Direction,
			"timestamp": msg.Timestamp,
			"status":    msg.Status,
		},
	})

	e.notify(ctx, tenantID, assigneeID, messageReceivedRule,
		messageReceivedRule.Title,
		fmt.Sprintf(messageReceivedRule.Message, msg.ConversationID),
		map[string]any{"conversationId": msg.ConversationID, "messageId": msg.ID},
	)
}

// StatusChanged broadcasts a delivery-status move on its per-status wire
// event. Only failures produce a notification.
func (e *MessageEvents) StatusChanged(ctx context.Context, tenantID, messageID, status string) {
	event, ok := messageStatusEvents[status]
	if !ok {
		e.log.LogAttrs(ctx, slog.LevelWarn, "unknown message status, dropping event",
			logger.TenantID(tenantID),
			logger.MessageID(messageID),
			slog.String("status", status),
		)
		return
	}

	e.broadcaster.BroadcastToTeam(ctx, tenantID, event, map[string]any{
		"messageId": messageID,
		"status":    status,
	})

	if status != MessageStatusFailed {
		return
	}
	e.notify(ctx, tenantID, "", messageFailedRule,
		messageFailedRule.Title,
		fmt.Sprintf(messageFailedRule.Message, messageID),
		map[string]any{"messageId": messageID},
	)
}
