package httpserver

import "errors"

var (
	// ErrStart is returned when the listener cannot be opened or the
	// server exits with an error other than http.ErrServerClosed.
	ErrStart = errors.New("httpserver: start failed")
	// ErrShutdown is returned when graceful shutdown does not complete
	// within the configured timeout.
	ErrShutdown = errors.New("httpserver: shutdown failed")
)
