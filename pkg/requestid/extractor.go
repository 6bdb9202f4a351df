package requestid

import (
	"context"
	"log/slog"
)

// LoggerExtractor returns a logger context extractor that records the
// request ID on every log line written with a request context. Contexts
// without a request ID produce no attribute.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		id := FromContext(ctx)
		if id == "" {
			return slog.Attr{}, false
		}
		return slog.String("request_id", id), true
	}
}
