// Package broadcast fans typed events out to live connections scoped by
// tenant or user.
//
// The Registry maps room names (team:{tenantID}, user:{userID}) to the
// active subscribers of each room; the Broadcaster wraps it with the
// team/user primitives the rest of the core calls. Delivery is
// at-most-once and fire-and-forget: there is no queue, no retry, and no
// replay buffer. A recipient who is offline at broadcast time receives
// nothing, and dashboards reconcile by a full-state fetch on reconnect.
//
// Broadcaster faults are logged and swallowed. Live push is a best-effort
// enhancement and must never abort the caller's primary transaction.
package broadcast
