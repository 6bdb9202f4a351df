package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/broadcast"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/events"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
)

type fixture struct {
	broadcaster *broadcast.Broadcaster
	notifier    *notifications.Service
	storage     *notifications.MemoryStorage
	team        *broadcast.Subscriber
}

func newFixture(t *testing.T, tenantID string) *fixture {
	t.Helper()

	registry := broadcast.NewRegistry()
	t.Cleanup(func() { _ = registry.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	team, err := registry.Subscribe(ctx, broadcast.TeamRoom(tenantID))
	require.NoError(t, err)

	storage := notifications.NewMemoryStorage()
	broadcaster := broadcast.NewBroadcaster(registry)
	notifier, err := notifications.NewService(storage, notifications.NewMemoryPreferenceStore(), broadcaster)
	require.NoError(t, err)

	return &fixture{
		broadcaster: broadcaster,
		notifier:    notifier,
		storage:     storage,
		team:        team,
	}
}

// next reads one envelope of the given event type, skipping the
// whatsapp:notification envelopes the notification service itself emits.
func (f *fixture) next(t *testing.T, event string) broadcast.Envelope {
	t.Helper()

	deadline := time.After(time.Second)
	for {
		select {
		case env := <-f.team.Events():
			if env.Event == event {
				return env
			}
		case <-deadline:
			t.Fatalf("no %s envelope arrived", event)
		}
	}
}

func (f *fixture) assertNoMore(t *testing.T, event string) {
	t.Helper()

	for {
		select {
		case env := <-f.team.Events():
			if env.Event == event {
				t.Fatalf("unexpected %s envelope", event)
			}
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}

func (f *fixture) stored(t *testing.T, tenantID string) []notifications.Notification {
	t.Helper()

	rows, err := f.storage.List(context.Background(), tenantID, notifications.ListOptions{})
	require.NoError(t, err)
	return rows
}

func TestTranslatorConstructors(t *testing.T) {
	t.Parallel()

	_, err := events.NewSessionEvents(nil, nil)
	require.ErrorIs(t, err, events.ErrNotifierRequired)
	_, err = events.NewMessageEvents(nil, nil)
	require.ErrorIs(t, err, events.ErrNotifierRequired)
	_, err = events.NewConversationEvents(nil, nil)
	require.ErrorIs(t, err, events.ErrNotifierRequired)
	_, err = events.NewAnalyticsEvents(nil, nil)
	require.ErrorIs(t, err, events.ErrNotifierRequired)
}

func TestSessionEvents(t *testing.T) {
	t.Parallel()

	t.Run("qr generated is broadcast only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		sessions, err := events.NewSessionEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		sessions.QRGenerated(context.Background(), "t1", "s1", "data:image/png;base64,abc")

		env := f.next(t, events.EventQR)
		assert.Equal(t, "s1", env.Payload["sessionId"])
		assert.Equal(t, "data:image/png;base64,abc", env.Payload["qrCode"])
		assert.Contains(t, env.Payload, "timestamp")
		assert.Empty(t, f.stored(t, "t1"))
	})

	t.Run("routine status change does not notify", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		sessions, err := events.NewSessionEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		sessions.StatusChanged(context.Background(), "t1", "s1", "support-line",
			events.SessionInitializing, events.SessionQR)

		env := f.next(t, events.EventSessionStatus)
		assert.Equal(t, events.SessionQR, env.Payload["status"])
		assert.Equal(t, "support-line", env.Payload["sessionName"])
		assert.Empty(t, f.stored(t, "t1"))
	})

	t.Run("significant status change notifies", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		sessions, err := events.NewSessionEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		sessions.StatusChanged(context.Background(), "t1", "s1", "support-line",
			events.SessionConnected, events.SessionDisconnected)

		rows := f.stored(t, "t1")
		require.Len(t, rows, 1)
		assert.Equal(t, notifications.TypeWarning, rows[0].Type)
		assert.Equal(t, notifications.PriorityHigh, rows[0].Priority)
		assert.Equal(t, notifications.CategorySession, rows[0].Category)
		assert.Contains(t, rows[0].Message, "support-line")
	})

	t.Run("authenticated", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		sessions, err := events.NewSessionEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		sessions.Authenticated(context.Background(), "t1", "s1", "support-line", "+31600000000")

		env := f.next(t, events.EventSessionAuthenticated)
		assert.Equal(t, "+31600000000", env.Payload["phoneNumber"])

		rows := f.stored(t, "t1")
		require.Len(t, rows, 1)
		assert.Equal(t, notifications.TypeSuccess, rows[0].Type)
		assert.Equal(t, notifications.PriorityHigh, rows[0].Priority)
	})

	t.Run("auth failure is critical", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		sessions, err := events.NewSessionEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		sessions.AuthFailed(context.Background(), "t1", "s1", "support-line", "invalid credentials")

		rows := f.stored(t, "t1")
		require.Len(t, rows, 1)
		assert.Equal(t, notifications.TypeError, rows[0].Type)
		assert.Equal(t, notifications.PriorityCritical, rows[0].Priority)
		assert.Contains(t, rows[0].Message, "invalid credentials")
	})

	t.Run("disconnected", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		sessions, err := events.NewSessionEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		sessions.Disconnected(context.Background(), "t1", "s1", "support-line", "phone offline")

		env := f.next(t, events.EventSessionDisconnected)
		assert.Equal(t, "phone offline", env.Payload["reason"])

		rows := f.stored(t, "t1")
		require.Len(t, rows, 1)
		assert.Equal(t, notifications.TypeWarning, rows[0].Type)
		assert.Equal(t, notifications.PriorityHigh, rows[0].Priority)
	})
}

func TestMessageEvents(t *testing.T) {
	t.Parallel()

	msg := events.Message{
		ID:             "m1",
		SessionID:      "s1",
		ChatID:         "31600000000@c.us",
		ConversationID: "c1",
		Type:           "chat",
		Body:           "hello",
		Direction:      "inbound",
		Timestamp:      time.Now(),
		Status:         "received",
	}

	t.Run("received notifies the assignee", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		messages, err := events.NewMessageEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		messages.Received(context.Background(), "t1", msg, "agent-1")

		env := f.next(t, events.EventMessageNew)
		assert.Equal(t, "c1", env.Payload["conversationId"])
		inner, ok := env.Payload["message"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "hello", inner["body"])

		rows := f.stored(t, "t1")
		require.Len(t, rows, 1)
		assert.Equal(t, "agent-1", rows[0].UserID)
		assert.Equal(t, notifications.CategoryMessage, rows[0].Category)
	})

	t.Run("received without assignee goes team wide", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		messages, err := events.NewMessageEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		messages.Received(context.Background(), "t1", msg, "")

		rows := f.stored(t, "t1")
		require.Len(t, rows, 1)
		assert.Empty(t, rows[0].UserID)
	})

	t.Run("delivery statuses map onto per-status events", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		messages, err := events.NewMessageEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)
		ctx := context.Background()

		messages.StatusChanged(ctx, "t1", "m1", events.MessageStatusSent)
		messages.StatusChanged(ctx, "t1", "m1", events.MessageStatusDelivered)
		messages.StatusChanged(ctx, "t1", "m1", events.MessageStatusRead)

		f.next(t, events.EventMessageSent)
		f.next(t, events.EventMessageDelivered)
		f.next(t, events.EventMessageRead)
		assert.Empty(t, f.stored(t, "t1"))
	})

	t.Run("failure notifies", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		messages, err := events.NewMessageEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		messages.StatusChanged(context.Background(), "t1", "m1", events.MessageStatusFailed)

		f.next(t, events.EventMessageFailed)
		rows := f.stored(t, "t1")
		require.Len(t, rows, 1)
		assert.Equal(t, notifications.TypeError, rows[0].Type)
		assert.Equal(t, notifications.PriorityHigh, rows[0].Priority)
	})

	t.Run("unknown status is dropped", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		messages, err := events.NewMessageEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		messages.StatusChanged(context.Background(), "t1", "m1", "teleported")

		f.assertNoMore(t, events.EventMessageSent)
		assert.Empty(t, f.stored(t, "t1"))
	})
}

func TestConversationEvents(t *testing.T) {
	t.Parallel()

	t.Run("updated and status are broadcast only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		conversations, err := events.NewConversationEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)
		ctx := context.Background()

		conversations.Updated(ctx, "t1", "c1", map[string]any{"subject": "billing"})
		conversations.StatusChanged(ctx, "t1", "c1", "closed")

		env := f.next(t, events.EventConversationUpdated)
		assert.Equal(t, "c1", env.Payload["conversationId"])
		env = f.next(t, events.EventConversationStatus)
		assert.Equal(t, "closed", env.Payload["status"])
		assert.Empty(t, f.stored(t, "t1"))
	})

	t.Run("assignment notifies the assignee", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		conversations, err := events.NewConversationEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		conversations.Assigned(context.Background(), "t1", "c1", "agent-1", "admin-1")

		env := f.next(t, events.EventConversationAssigned)
		assert.Equal(t, "agent-1", env.Payload["assigneeId"])
		assert.Equal(t, "admin-1", env.Payload["assignedBy"])

		rows := f.stored(t, "t1")
		require.Len(t, rows, 1)
		assert.Equal(t, "agent-1", rows[0].UserID)
		assert.Equal(t, notifications.CategoryConversation, rows[0].Category)
	})

	t.Run("unassignment is broadcast only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		conversations, err := events.NewConversationEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		conversations.Assigned(context.Background(), "t1", "c1", "", "")

		f.next(t, events.EventConversationAssigned)
		assert.Empty(t, f.stored(t, "t1"))
	})

	t.Run("contact sync", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		conversations, err := events.NewConversationEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)
		ctx := context.Background()

		conversations.ContactSynced(ctx, "t1", 42)
		conversations.ContactUpdated(ctx, "t1", "contact-1", map[string]any{"name": "Alex"})

		env := f.next(t, events.EventContactSynced)
		assert.Equal(t, 42, env.Payload["count"])
		env = f.next(t, events.EventContactUpdated)
		assert.Equal(t, "contact-1", env.Payload["contactId"])
	})
}

func TestAnalyticsEvents(t *testing.T) {
	t.Parallel()

	t.Run("small moves are broadcast only", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		analytics, err := events.NewAnalyticsEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		analytics.MetricsUpdated(context.Background(), "t1",
			map[string]float64{"messagesPerHour": 110},
			map[string]float64{"messagesPerHour": 100},
		)

		env := f.next(t, events.EventAnalyticsUpdate)
		assert.Contains(t, env.Payload, "metrics")
		assert.Empty(t, f.stored(t, "t1"))
	})

	t.Run("large moves notify", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		analytics, err := events.NewAnalyticsEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		analytics.MetricsUpdated(context.Background(), "t1",
			map[string]float64{"messagesPerHour": 150},
			map[string]float64{"messagesPerHour": 100},
		)

		rows := f.stored(t, "t1")
		require.Len(t, rows, 1)
		assert.Equal(t, notifications.CategoryAnalytics, rows[0].Category)
		assert.Contains(t, rows[0].Message, "messagesPerHour")
	})

	t.Run("single metric sample", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		analytics, err := events.NewAnalyticsEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		analytics.MetricUpdated(context.Background(), "t1", "responseTime", 1.8, map[string]any{"unit": "s"})

		env := f.next(t, events.EventMetricsUpdate)
		assert.Equal(t, "responseTime", env.Payload["metricType"])
		assert.Equal(t, 1.8, env.Payload["value"])
		assert.Empty(t, f.stored(t, "t1"))
	})

	t.Run("threshold breach raises an alert", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "t1")
		analytics, err := events.NewAnalyticsEvents(f.broadcaster, f.notifier)
		require.NoError(t, err)

		analytics.ThresholdBreach(context.Background(), "t1",
			"Response time above threshold",
			"Average response time exceeded 5 minutes",
			map[string]any{"threshold": 300},
		)

		env := f.next(t, events.EventAlert)
		assert.Equal(t, "high", env.Payload["priority"])
		assert.Equal(t, "Response time above threshold", env.Payload["title"])

		rows := f.stored(t, "t1")
		require.Len(t, rows, 1)
		assert.Equal(t, notifications.TypeWarning, rows[0].Type)
		assert.Equal(t, notifications.PriorityHigh, rows[0].Priority)
	})
}

func TestSignificantChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous float64
		current  float64
		want     bool
	}{
		{"exact twenty percent is routine", 100, 120, false},
		{"just over twenty percent", 100, 121, true},
		{"large drop", 100, 50, true},
		{"small drop", 100, 90, false},
		{"unchanged", 100, 100, false},
		{"from zero to nonzero", 0, 1, true},
		{"zero to zero", 0, 0, false},
		{"negative baseline", -100, -130, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, events.SignificantChange(tt.previous, tt.current))
		})
	}
}
