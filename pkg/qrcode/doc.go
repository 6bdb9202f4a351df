// Package qrcode renders session-bootstrap QR codes and manages their
// short-lived tokens in the shared store.
//
// A token lives for exactly 90 seconds and there is at most one live token
// per session. The store's own TTL evicts expired tokens; every read
// additionally re-checks the recorded expiry so a token is never served
// during the window between logical expiry and store eviction.
//
// Rendering failure is the one fault in the realtime core that is always
// fatal and surfaced: there is no degraded mode for a QR code that cannot
// be scanned.
package qrcode
