package gumshoe

import (
	"errors"
	"fmt"
)

// ErrStreamTimeout is returned when a streaming call's wall-clock
// deadline elapses without the server ever reporting a terminal
// (complete or failed) status.
var ErrStreamTimeout = errors.New("no final response before deadline")

// DecodeError reports a domain payload that failed validation. Field
// is set for field-scoped failures and empty when the payload as a
// whole was malformed.
type DecodeError struct {
	Kind  string // record kind: "chat", "turf", "response status", ...
	Field string
	Msg   string
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %s: field %q: %s", e.Kind, e.Field, e.Msg)
	}
	return fmt.Sprintf("decode %s: %s", e.Kind, e.Msg)
}

// TaskError carries the server-supplied failure text of a remote
// investigation task.
type TaskError struct {
	Message string
}

func (e *TaskError) Error() string {
	return "investigation failed: " + e.Message
}
