// Package mcp implements the client side of the Gumshoe agent service
// protocol: JSON-RPC 2.0 over HTTP POST, with MCP-style session
// semantics.
//
// The package owns three concerns. The transport ([HTTPTransport])
// frames JSON-RPC envelopes, authenticates with a bearer token, and
// round-trips the opaque Mcp-Session-Id header the server issues. The
// session manager inside [Client] performs the one-time handshake
// (initialize followed by the notifications/initialized notification),
// coalescing concurrent callers onto a single in-flight handshake, and
// re-establishes the session when the server signals it is gone. The
// tool invoker ([Client.CallTool]) wraps named remote operations,
// retrying exactly once through a fresh handshake on session loss.
//
// Domain payload decoding lives in the gumshoe package; this package
// deals only in envelopes and content blocks.
package mcp
