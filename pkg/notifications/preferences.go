package notifications

import "context"

// Channels lists the delivery channels a user accepts.
type Channels struct {
	InApp bool `json:"inApp"`
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// Preferences is one user's per-tenant notification filter. A missing row
// is never user-visible: reads always yield a fully-populated default.
type Preferences struct {
	Enabled    bool              `json:"enabled"`
	Priorities map[Priority]bool `json:"priorities"`
	Categories map[Category]bool `json:"types"`
	Channels   Channels          `json:"channels"`
}

// DefaultPreferences returns the preferences materialized on first access:
// low priority suppressed, all domain categories allowed, in-app only.
func DefaultPreferences() Preferences {
	return Preferences{
		Enabled: true,
		Priorities: map[Priority]bool{
			PriorityCritical: true,
			PriorityHigh:     true,
			PriorityMedium:   true,
			PriorityLow:      false,
		},
		Categories: map[Category]bool{
			CategorySession:      true,
			CategoryMessage:      true,
			CategoryConversation: true,
			CategoryAnalytics:    true,
			CategorySystem:       true,
		},
		Channels: Channels{InApp: true},
	}
}

// Allows reports whether the preferences admit in-app delivery of the
// notification. Unknown priorities and categories are blocked.
func (p Preferences) Allows(n *Notification) bool {
	if !p.Enabled || !p.Channels.InApp {
		return false
	}
	if !p.Priorities[n.Priority] {
		return false
	}
	return p.Categories[n.Category]
}

// PreferenceStore persists one Preferences row per (tenant, user) pair.
type PreferenceStore interface {
	// Get returns the user's preferences, materializing and persisting
	// the default row when none exists yet.
	Get(ctx context.Context, tenantID, userID string) (Preferences, error)

	// Set replaces the user's preferences row.
	Set(ctx context.Context, tenantID, userID string, prefs Preferences) error
}
