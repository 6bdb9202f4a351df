// Package events turns domain lifecycle transitions into live broadcasts
// and notifications.
//
// The package owns the wire event catalogue (the whatsapp:* identifiers
// clients subscribe to) and one translator per domain area: sessions,
// messages, conversations, and analytics. Translators carry no domain
// logic of their own; each method broadcasts a shaped payload and, when a
// static mapping rule says the transition matters, creates a notification
// through the notification service. Both deliveries are best-effort: a
// translator method never fails the caller's transaction.
//
//	sessions, err := events.NewSessionEvents(broadcaster, notifier)
//	if err != nil {
//		return err
//	}
//	sessions.StatusChanged(ctx, tenantID, sessionID, "support-line",
//		events.SessionConnected, events.SessionDisconnected)
package events
