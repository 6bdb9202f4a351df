// Package requestid attaches a correlation identifier to every HTTP
// request.
//
// Middleware reuses a valid client-supplied X-Request-ID header or
// generates a UUID, stores it in the request context, and echoes it back
// in the response. FromContext reads it anywhere downstream, and
// LoggerExtractor plugs it into the pkg/logger context extractors so all
// log lines of one request share a request_id attribute.
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//
//	log := logger.New(
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
package requestid
