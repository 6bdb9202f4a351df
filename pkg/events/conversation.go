package events

import (
	"context"
	"fmt"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/broadcast"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
)

// ConversationEvents translates conversation and contact transitions.
// Contact sync rides with conversations because both originate from the
// same upstream sync job.
type ConversationEvents struct {
	translator
}

// NewConversationEvents creates the conversation translator.
func NewConversationEvents(b *broadcast.Broadcaster, svc *notifications.Service, opts ...Option) (*ConversationEvents, error) {
	t, err := newTranslator(b, svc, opts...)
	if err != nil {
		return nil, err
	}
	return &ConversationEvents{translator: t}, nil
}

// Updated broadcasts a change to conversation fields.
func (e *ConversationEvents) Updated(ctx context.Context, tenantID, conversationID string, changes map[string]any) {
	payload := map[string]any{"conversationId": conversationID}
	if changes != nil {
		payload["changes"] = changes
	}
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventConversationUpdated, payload)
}

// StatusChanged broadcasts an open/closed/pending style status move.
func (e *ConversationEvents) StatusChanged(ctx context.Context, tenantID, conversationID, status string) {
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventConversationStatus, map[string]any{
		"conversationId": conversationID,
		"status":         status,
	})
}

// Assigned broadcasts the assignment and notifies the assignee.
func (e *ConversationEvents) Assigned(ctx context.Context, tenantID, conversationID, assigneeID, assignedBy string) {
	payload := map[string]any{
		"conversationId": conversationID,
		"assigneeId":     assigneeID,
	}
	if assignedBy != "" {
		payload["assignedBy"] = assignedBy
	}
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventConversationAssigned, payload)

	if assigneeID == "" {
		return
	}
	e.notify(ctx, tenantID, assigneeID, conversationAssignedRule,
		conversationAssignedRule.Title,
		fmt.Sprintf(conversationAssignedRule.Message, conversationID),
		map[string]any{"conversationId": conversationID},
	)
}

// ContactSynced broadcasts the completion of a contact sync run.
func (e *ConversationEvents) ContactSynced(ctx context.Context, tenantID string, count int) {
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventContactSynced, map[string]any{
		"count": count,
	})
}

// ContactUpdated broadcasts a change to a single contact.
func (e *ConversationEvents) ContactUpdated(ctx context.Context, tenantID, contactID string, changes map[string]any) {
	payload := map[string]any{"contactId": contactID}
	if changes != nil {
		payload["changes"] = changes
	}
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventContactUpdated, payload)
}
