package events

import (
	"context"
	"fmt"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/broadcast"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
)

// AnalyticsEvents translates metric updates and threshold breaches.
type AnalyticsEvents struct {
	translator
}

// NewAnalyticsEvents creates the analytics translator.
func NewAnalyticsEvents(b *broadcast.Broadcaster, svc *notifications.Service, opts ...Option) (*AnalyticsEvents, error) {
	t, err := newTranslator(b, svc, opts...)
	if err != nil {
		return nil, err
	}
	return &AnalyticsEvents{translator: t}, nil
}

// MetricsUpdated broadcasts a full metrics snapshot. A notification is
// created only for metrics that moved more than twenty percent against
// the previous snapshot, so dashboards refresh constantly but people are
// only pinged on real shifts.
func (e *AnalyticsEvents) MetricsUpdated(ctx context.Context, tenantID string, metrics, previous map[string]float64) {
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventAnalyticsUpdate, map[string]any{
		"metrics": metrics,
	})

	for name, current := range metrics {
		prev, ok := previous[name]
		if !ok || !SignificantChange(prev, current) {
			continue
		}
		e.notify(ctx, tenantID, "", metricsChangedRule,
			metricsChangedRule.Title,
			fmt.Sprintf(metricsChangedRule.Message, name),
			map[string]any{"metric": name, "previous": prev, "current": current},
		)
	}
}

// MetricUpdated broadcasts a single metric sample. Broadcast-only.
func (e *AnalyticsEvents) MetricUpdated(ctx context.Context, tenantID, metricType string, value float64, metadata map[string]any) {
	payload := map[string]any{
		"metricType": metricType,
		"value":      value,
	}
	if metadata != nil {
		payload["metadata"] = metadata
	}
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventMetricsUpdate, payload)
}

// ThresholdBreach raises a tenant-wide alert plus a notification.
func (e *AnalyticsEvents) ThresholdBreach(ctx context.Context, tenantID, title, message string, data map[string]any) {
	payload := map[string]any{
		"title":    title,
		"message":  message,
		"priority": "high",
	}
	if data != nil {
		payload["data"] = data
	}
	e.broadcaster.BroadcastToTeam(ctx, tenantID, EventAlert, payload)

	e.notify(ctx, tenantID, "", thresholdBreachRule, title, message, data)
}
