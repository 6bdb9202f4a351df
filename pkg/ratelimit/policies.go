package ratelimit

import (
	"fmt"
	"time"
)

// Endpoint classes with named budgets.
const (
	EndpointSession   = "session"
	EndpointMessage   = "message"
	EndpointAnalytics = "analytics"
	EndpointRead      = "read"
	EndpointWrite     = "write"
	EndpointDefault   = "default"
)

// policies maps endpoint classes to their request budgets. The message
// budget mirrors the upstream messaging provider's own cap.
var policies = map[string]Policy{
	EndpointSession:   {Name: EndpointSession, Limit: 10, Window: time.Minute},
	EndpointMessage:   {Name: EndpointMessage, Limit: 60, Window: time.Minute},
	EndpointAnalytics: {Name: EndpointAnalytics, Limit: 30, Window: time.Minute},
	EndpointRead:      {Name: EndpointRead, Limit: 120, Window: time.Minute},
	EndpointWrite:     {Name: EndpointWrite, Limit: 30, Window: time.Minute},
	EndpointDefault:   {Name: EndpointDefault, Limit: 60, Window: time.Minute},
}

// PolicyFor returns the named policy for an endpoint class, falling back
// to the default budget for unknown classes.
func PolicyFor(endpoint string) Policy {
	if p, ok := policies[endpoint]; ok {
		return p
	}
	return policies[EndpointDefault]
}

// Key builds the store key for a tenant/endpoint pair.
func Key(tenantID, endpoint string) string {
	return fmt.Sprintf("ratelimit:%s:%s", tenantID, endpoint)
}
