// Package api holds the transport boundary types shared by gateway
// integrations: outbound requests that can render a log-safe copy of
// themselves and decoded JSON responses.
package api

// Request is an outbound gateway request.
type Request interface {
	// String returns the full wire representation, sensitive fields included.
	String() string
	// SafeString returns the same representation with sensitive fields
	// masked or removed, suitable for logs.
	SafeString() string
}

// Response is an inbound gateway response.
type Response interface {
	String() string
	SafeString() string
}
