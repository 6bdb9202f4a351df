// Package logger provides a small factory around log/slog plus attribute
// helpers shared by the realtime services.
//
// The factory returns a *slog.Logger configured through functional options
// (format, level, static attributes) and wraps the handler with a decorator
// that injects request-scoped values from context on every record, so
// tenant and session identifiers follow log lines without being threaded
// through every call site.
package logger
