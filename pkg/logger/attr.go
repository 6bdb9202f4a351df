package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records the tenant identifier under the key "tenant_id".
func TenantID(id string) slog.Attr {
	return slog.String("tenant_id", id)
}

// UserID records the user identifier under the key "user_id".
// If id is empty, it returns an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// SessionID records the messaging session identifier under the key "session_id".
func SessionID(id string) slog.Attr {
	return slog.String("session_id", id)
}

// ConversationID records the conversation identifier under the key "conversation_id".
func ConversationID(id string) slog.Attr {
	return slog.String("conversation_id", id)
}

// MessageID records the message identifier under the key "message_id".
func MessageID(id string) slog.Attr {
	return slog.String("message_id", id)
}

// NotificationID records the notification identifier under the key "notification_id".
func NotificationID(id string) slog.Attr {
	return slog.String("notification_id", id)
}

// EventType records the wire event name under the key "event_type".
func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

// Endpoint records the rate-limited endpoint class under the key "endpoint".
func Endpoint(name string) slog.Attr {
	return slog.String("endpoint", name)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Room records the broadcast room name under the key "room".
func Room(name string) slog.Attr {
	return slog.String("room", name)
}
