package events

import (
	"math"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
)

// notifyRule is one row of a transition-to-notification mapping table.
// Title and Message are fmt templates filled by the emitting translator.
type notifyRule struct {
	Type     notifications.Type
	Priority notifications.Priority
	Category notifications.Category
	Title    string
	Message  string
}

type sessionStatusRule struct {
	From string
	To   string
	Rule notifyRule
}

// sessionStatusRules lists the status transitions significant enough to
// notify on. Routine churn (initializing, QR refresh loops, reconnect
// attempts) stays broadcast-only.
var sessionStatusRules = []sessionStatusRule{
	{
		From: SessionQR,
		To:   SessionConnected,
		Rule: notifyRule{
			Type:     notifications.TypeSuccess,
			Priority: notifications.PriorityMedium,
			Category: notifications.CategorySession,
			Title:    "WhatsApp session connected",
			Message:  "Session %q is connected and ready to send messages",
		},
	},
	{
		From: SessionConnected,
		To:   SessionDisconnected,
		Rule: notifyRule{
			Type:     notifications.TypeWarning,
			Priority: notifications.PriorityHigh,
			Category: notifications.CategorySession,
			Title:    "WhatsApp session disconnected",
			Message:  "Session %q lost its connection",
		},
	},
	{
		From: SessionConnecting,
		To:   SessionFailed,
		Rule: notifyRule{
			Type:     notifications.TypeError,
			Priority: notifications.PriorityCritical,
			Category: notifications.CategorySession,
			Title:    "WhatsApp session failed",
			Message:  "Session %q could not establish a connection",
		},
	},
	{
		From: SessionConnected,
		To:   SessionBanned,
		Rule: notifyRule{
			Type:     notifications.TypeError,
			Priority: notifications.PriorityCritical,
			Category: notifications.CategorySession,
			Title:    "WhatsApp session banned",
			Message:  "Session %q was banned by the provider",
		},
	},
}

// sessionStatusRuleFor returns the mapping row for a status pair, or false
// when the transition is not significant.
func sessionStatusRuleFor(from, to string) (notifyRule, bool) {
	for _, r := range sessionStatusRules {
		if r.From == from && r.To == to {
			return r.Rule, true
		}
	}
	return notifyRule{}, false
}

var authenticatedRule = notifyRule{
	Type:     notifications.TypeSuccess,
	Priority: notifications.PriorityHigh,
	Category: notifications.CategorySession,
	Title:    "WhatsApp authenticated",
	Message:  "Session %q authenticated successfully",
}

var authFailedRule = notifyRule{
	Type:     notifications.TypeError,
	Priority: notifications.PriorityCritical,
	Category: notifications.CategorySession,
	Title:    "WhatsApp authentication failed",
	Message:  "Session %q failed to authenticate: %s",
}

var disconnectedRule = notifyRule{
	Type:     notifications.TypeWarning,
	Priority: notifications.PriorityHigh,
	Category: notifications.CategorySession,
	Title:    "WhatsApp session disconnected",
	Message:  "Session %q disconnected: %s",
}

var messageReceivedRule = notifyRule{
	Type:     notifications.TypeInfo,
	Priority: notifications.PriorityMedium,
	Category: notifications.CategoryMessage,
	Title:    "New WhatsApp message",
	Message:  "New message in conversation %s",
}

var messageFailedRule = notifyRule{
	Type:     notifications.TypeError,
	Priority: notifications.PriorityHigh,
	Category: notifications.CategoryMessage,
	Title:    "Message delivery failed",
	Message:  "Message %s could not be delivered",
}

var conversationAssignedRule = notifyRule{
	Type:     notifications.TypeInfo,
	Priority: notifications.PriorityMedium,
	Category: notifications.CategoryConversation,
	Title:    "Conversation assigned to you",
	Message:  "Conversation %s was assigned to you",
}

var metricsChangedRule = notifyRule{
	Type:     notifications.TypeInfo,
	Priority: notifications.PriorityMedium,
	Category: notifications.CategoryAnalytics,
	Title:    "Analytics shifted",
	Message:  "Metric %q changed by more than 20%%",
}

var thresholdBreachRule = notifyRule{
	Type:     notifications.TypeWarning,
	Priority: notifications.PriorityHigh,
	Category: notifications.CategoryAnalytics,
	Title:    "%s",
	Message:  "%s",
}

// messageStatusEvents maps a delivery status to its wire event.
var messageStatusEvents = map[string]string{
	MessageStatusSent:      EventMessageSent,
	MessageStatusDelivered: EventMessageDelivered,
	MessageStatusRead:      EventMessageRead,
	MessageStatusFailed:    EventMessageFailed,
}

// significantChangeRatio gates metric notifications: anything within
// twenty percent of the previous value is routine.
const significantChangeRatio = 0.20

// SignificantChange reports whether a metric moved enough relative to its
// previous value to be worth a notification. A move away from zero is
// always significant.
func SignificantChange(previous, current float64) bool {
	if previous == 0 {
		return current != 0
	}
	return math.Abs(current-previous)/math.Abs(previous) > significantChangeRatio
}
