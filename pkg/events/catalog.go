package events

import "github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"

// Wire event names. These identifiers are part of the client contract and
// must not change.
const (
	EventQR                   = "whatsapp:qr"
	EventSessionStatus        = "whatsapp:session:status"
	EventSessionAuthenticated = "whatsapp:session:authenticated"
	EventSessionDisconnected  = "whatsapp:session:disconnected"

	EventMessageNew       = "whatsapp:message:new"
	EventMessageSent      = "whatsapp:message:sent"
	EventMessageDelivered = "whatsapp:message:delivered"
	EventMessageRead      = "whatsapp:message:read"
	EventMessageFailed    = "whatsapp:message:failed"

	EventConversationUpdated  = "whatsapp:conversation:updated"
	EventConversationStatus   = "whatsapp:conversation:status"
	EventConversationAssigned = "whatsapp:conversation:assigned"

	EventContactSynced  = "whatsapp:contact:synced"
	EventContactUpdated = "whatsapp:contact:updated"

	EventAnalyticsUpdate = "whatsapp:analytics:update"
	EventMetricsUpdate   = "whatsapp:metrics:update"

	EventNotification = notifications.EventNotification
	EventAlert        = "whatsapp:alert"
)

// Session lifecycle statuses as reported by the session manager.
const (
	SessionInitializing = "initializing"
	SessionQR           = "qr"
	SessionConnecting   = "connecting"
	SessionConnected    = "connected"
	SessionDisconnected = "disconnected"
	SessionFailed       = "failed"
	SessionBanned       = "banned"
)

// Message delivery statuses mapped onto per-status wire events.
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
	MessageStatusFailed    = "failed"
)
