package notifications

import (
	"context"
	"time"
)

// ListOptions filter and page notification queries.
type ListOptions struct {
	// UserID scopes the query to one user's view (their rows plus
	// team-wide rows). Empty is the team view.
	UserID string

	Limit  int
	Offset int

	// UnreadOnly keeps only unread rows.
	UnreadOnly bool

	// Priority keeps only rows of one priority tier when set.
	Priority Priority

	// Category keeps only rows of one domain category when set.
	Category Category

	// Since keeps only rows created after the given time when set.
	Since *time.Time

	// IncludeDismissed keeps dismissed rows, which are hidden by default.
	IncludeDismissed bool
}

// Matches reports whether a notification passes the filter. Expired rows
// never match.
func (o ListOptions) Matches(n *Notification) bool {
	if n.IsExpired() {
		return false
	}
	if !n.VisibleTo(o.UserID) {
		return false
	}
	if o.UnreadOnly && n.Read {
		return false
	}
	if !o.IncludeDismissed && n.Dismissed {
		return false
	}
	if o.Priority != "" && n.Priority != o.Priority {
		return false
	}
	if o.Category != "" && n.Category != o.Category {
		return false
	}
	if o.Since != nil && !n.Timestamp.After(*o.Since) {
		return false
	}
	return true
}

// Storage persists notification rows in the shared store. List returns
// rows newest-first with ListOptions already applied, expired rows
// excluded.
type Storage interface {
	Create(ctx context.Context, n Notification) error
	Get(ctx context.Context, tenantID, id string) (*Notification, error)
	Update(ctx context.Context, n Notification) error
	List(ctx context.Context, tenantID string, opts ListOptions) ([]Notification, error)
	CountUnread(ctx context.Context, tenantID, userID string) (int, error)
}
