package notifications

import (
	"time"
)

// Type represents the notification severity.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Priority represents the notification priority tier.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Category is the domain area a notification originates from. Preferences
// filter on it.
type Category string

const (
	CategorySession      Category = "session"
	CategoryMessage      Category = "message"
	CategoryConversation Category = "conversation"
	CategoryAnalytics    Category = "analytics"
	CategorySystem       Category = "system"
)

// Notification is the persisted notification row. UserID empty means the
// notification is team-wide.
type Notification struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenantId"`
	UserID      string         `json:"userId,omitempty"`
	Type        Type           `json:"type"`
	Category    Category       `json:"category"`
	Priority    Priority       `json:"priority"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Read        bool           `json:"read"`
	Dismissed   bool           `json:"dismissed"`
	ExpiresAt   *time.Time     `json:"expiresAt,omitempty"`
	ActionURL   string         `json:"actionUrl,omitempty"`
	ActionLabel string         `json:"actionLabel,omitempty"`
}

// IsExpired reports whether the notification's expiry has passed.
// Expired notifications are never returned by list or count queries,
// regardless of their read/dismissed flags.
func (n *Notification) IsExpired() bool {
	if n.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*n.ExpiresAt)
}

// VisibleTo reports whether the notification belongs to the given user's
// view: their own rows plus team-wide rows. An empty userID is the team
// view and sees everything in the tenant.
func (n *Notification) VisibleTo(userID string) bool {
	if userID == "" {
		return true
	}
	return n.UserID == "" || n.UserID == userID
}

// CreateParams are the inputs to Service.Create. Zero-valued Type,
// Priority, and Category default to info/medium/system.
type CreateParams struct {
	TenantID    string
	UserID      string
	Type        Type
	Category    Category
	Priority    Priority
	Title       string
	Message     string
	Data        map[string]any
	ExpiresIn   time.Duration
	ActionURL   string
	ActionLabel string
}
