// Package notifications persists, filters, and delivers priority-tiered
// notifications with a read/dismiss lifecycle.
//
// Create builds a notification, applies the target user's preferences
// (a blocked notification is fully suppressed: nothing is persisted and
// nothing is broadcast), persists the row in the shared store, and pushes
// a live copy to the user's or the team's room. Team-wide notifications
// (no user) are never preference-filtered.
//
// Read paths cache briefly and always exclude rows whose expiry has
// passed. When the store is unreachable they fall back to a bounded
// in-process ring of the most recent notifications per tenant, populated
// opportunistically by Create, and mark the result Degraded.
package notifications
