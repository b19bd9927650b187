package mcp

import "context"

// Transport is the interface for agent service communication.
// Implementations handle framing, encoding, authentication, and the
// session-identifier header.
type Transport interface {
	// Send sends a JSON-RPC request and returns the response envelope.
	Send(ctx context.Context, req *Request) (*Response, error)

	// Notify sends a JSON-RPC notification (no response expected).
	Notify(ctx context.Context, notif *Notification) error

	// ClearSession forgets the session identifier, if any. The next
	// exchange goes out without a session header and adopts whatever
	// identifier the server hands back.
	ClearSession()

	// Close shuts down the transport and releases resources.
	Close() error
}
