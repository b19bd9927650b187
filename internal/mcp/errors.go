package mcp

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBadEnvelope marks a response body that could not be parsed as a
// JSON-RPC envelope. The wrapping error includes a bounded snippet of
// the offending body for diagnostics.
var ErrBadEnvelope = errors.New("malformed JSON-RPC envelope")

// HTTPError is returned when the agent service answers with a
// non-success HTTP status. It is the only error in this package that
// carries a machine-readable status code; session-loss detection keys
// off it.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("agent service returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("agent service returned HTTP %d: %s", e.Status, e.Body)
}

// IsSessionNotFound reports whether err is an HTTP 404 from the agent
// service, the signal that the server no longer knows our session.
// Only 404 qualifies: an authorization failure is not session loss,
// because retrying with the same credential cannot help.
func IsSessionNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusNotFound
}

// ToolError is a tool-level failure: the RPC round trip succeeded but
// the tool flagged isError in its result envelope.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed: %s", e.Tool, e.Message)
}
