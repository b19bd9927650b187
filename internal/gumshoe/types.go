package gumshoe

import "time"

// Chat is a server-owned conversation with the investigation agent.
// The client only observes chats; it never mutates fields locally.
type Chat struct {
	ID           string
	DisplayName  string
	FirstMessage string
	LastMessage  string
	LastActivity string // timestamp string as reported by the server
	Status       string
}

// Turf is a connected managed system (server, cloud account) the agent
// service can investigate. Read-only from the client's perspective.
type Turf struct {
	ID       string
	Name     string
	Kind     string
	Status   string
	OS       string
	Hostname string
	Arch     string
	Version  string
}

// ResponseState discriminates the ResponseStatus union.
type ResponseState int

const (
	// StateProcessing means the investigation is still running; a
	// partial snapshot of the output may be available.
	StateProcessing ResponseState = iota

	// StateComplete means the final response is ready.
	StateComplete

	// StateFailed means the investigation failed server-side.
	StateFailed
)

func (s ResponseState) String() string {
	switch s {
	case StateProcessing:
		return "processing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "error"
	default:
		return "unknown"
	}
}

// ResponseStatus is the polled status of an in-flight exchange.
// Exactly one variant applies, per State; the other fields are zero.
type ResponseStatus struct {
	State ResponseState

	// Partial is the in-progress output snapshot, nil when the server
	// sent none. Only meaningful while State is StateProcessing.
	Partial *string

	// RetryAfter is the server-suggested delay before the next poll.
	// Zero means the server left it unspecified.
	RetryAfter time.Duration

	// Response is the final output. Only set when State is StateComplete.
	Response string

	// Reason is the server-supplied failure text. Only set when State
	// is StateFailed.
	Reason string
}

// Exchange identifies one submitted message and its server-side
// asynchronous task. It lives only for the duration of the streaming
// call that produced it.
type Exchange struct {
	RequestID string
	ChatID    string
}

// CancelResult reports the outcome of cancelling a chat's running
// investigation.
type CancelResult struct {
	Status  string
	Message string
}

// TurfFilter narrows a turf search. Empty fields are not sent.
type TurfFilter struct {
	Name   string
	Kind   string
	OS     string
	Status string
}
