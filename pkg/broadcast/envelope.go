package broadcast

import (
	"fmt"
	"time"
)

// Envelope is the transient unit of fanout. It is never persisted.
type Envelope struct {
	Event     string         `json:"event"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// Event pairs a wire event name with its payload for batch broadcasting.
type Event struct {
	Type    string
	Payload map[string]any
}

// TeamRoom returns the room name all of a tenant's connections subscribe to.
func TeamRoom(tenantID string) string {
	return fmt.Sprintf("team:%s", tenantID)
}

// UserRoom returns the room name a single user's connections subscribe to.
func UserRoom(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}
