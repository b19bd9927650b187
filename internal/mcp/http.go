package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gumshoehq/gumshoe/internal/buildinfo"
	"github.com/gumshoehq/gumshoe/internal/httpkit"
)

const (
	// sessionHeader carries the opaque session identifier. The server
	// issues it on any response; the client echoes it on every
	// subsequent request.
	sessionHeader = "Mcp-Session-Id"

	// clientInfoHeader identifies the client (name/version) to the
	// server for observability.
	clientInfoHeader = "X-Client-Info"

	// DefaultCallTimeout bounds a single request/response exchange.
	// It is combined with any caller-supplied cancellation: whichever
	// fires first aborts the in-flight call.
	DefaultCallTimeout = 30 * time.Second

	// maxResponseBody caps how much of a response body we will read.
	maxResponseBody = 10 << 20

	// bodySnippetLen bounds how much raw body text ends up in a
	// protocol-shape error message.
	bodySnippetLen = 200
)

// HTTPConfig configures an HTTP transport that communicates with the
// agent service endpoint (JSON-RPC over POST).
type HTTPConfig struct {
	// URL is the agent service endpoint.
	URL string

	// Token is the bearer credential attached to every request.
	Token string

	// CallTimeout overrides DefaultCallTimeout when positive.
	CallTimeout time.Duration

	// Logger is the structured logger for transport diagnostics.
	Logger *slog.Logger
}

// HTTPTransport communicates with the agent service over HTTP. Each
// JSON-RPC message is sent as an HTTP POST; responses come back in the
// response body.
type HTTPTransport struct {
	url         string
	token       string
	callTimeout time.Duration
	httpClient  *http.Client
	logger      *slog.Logger

	mu        sync.RWMutex
	sessionID string
}

// NewHTTPTransport creates an HTTP transport for the given config.
// The underlying HTTP client is constructed via httpkit with its own
// client-level timeout disabled: per-call deadlines are enforced here
// through the request context so they compose with caller cancellation.
func NewHTTPTransport(cfg HTTPConfig) *HTTPTransport {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	return &HTTPTransport{
		url:         cfg.URL,
		token:       cfg.Token,
		callTimeout: timeout,
		httpClient:  httpkit.NewClient(httpkit.WithTimeout(0)),
		logger:      logger,
	}
}

// SessionID returns the current session identifier, or "" if none has
// been issued yet.
func (t *HTTPTransport) SessionID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessionID
}

// ClearSession forgets the session identifier.
func (t *HTTPTransport) ClearSession() {
	t.mu.Lock()
	t.sessionID = ""
	t.mu.Unlock()
}

// Send sends a JSON-RPC request via HTTP POST and returns the response
// envelope. A top-level error object is returned inside the envelope;
// callers decide how to surface it.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	// Per-call timeout ANDed with caller cancellation; it must cover
	// the body read below, not just the round trip.
	ctx, cancel := context.WithTimeout(ctx, t.callTimeout)
	defer cancel()

	httpResp, err := t.post(ctx, body)
	if err != nil {
		return nil, err
	}
	defer httpkit.DrainAndClose(httpResp.Body, 1<<20)

	t.captureSession(httpResp)

	if httpResp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			Status: httpResp.StatusCode,
			Body:   httpkit.ReadErrorBody(httpResp.Body, 1<<20),
		}
	}

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v (body: %q)", ErrBadEnvelope, err, snippet(respBody, bodySnippetLen))
	}

	return &resp, nil
}

// Notify sends a JSON-RPC notification via HTTP POST. No response
// content is expected, but the HTTP status is checked.
func (t *HTTPTransport) Notify(ctx context.Context, notif *Notification) error {
	body, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.callTimeout)
	defer cancel()

	httpResp, err := t.post(ctx, body)
	if err != nil {
		return err
	}
	defer httpkit.DrainAndClose(httpResp.Body, 1<<20)

	t.captureSession(httpResp)

	// Accept 200 and 202 (accepted) for notifications.
	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusAccepted {
		return &HTTPError{
			Status: httpResp.StatusCode,
			Body:   httpkit.ReadErrorBody(httpResp.Body, 1<<20),
		}
	}

	return nil
}

// Close is a no-op for HTTP transports. The underlying HTTP client
// manages its own connection pool via httpkit.
func (t *HTTPTransport) Close() error {
	return nil
}

// post performs one POST exchange under the already-bounded context.
func (t *HTTPTransport) post(ctx context.Context, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+t.token)
	httpReq.Header.Set(clientInfoHeader, buildinfo.UserAgent())

	t.mu.RLock()
	if t.sessionID != "" {
		httpReq.Header.Set(sessionHeader, t.sessionID)
	}
	t.mu.RUnlock()

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request to %s: %w", t.url, err)
	}
	return httpResp, nil
}

// captureSession adopts the session identifier from a response header.
// The server may rotate it silently, so any observed value wins.
func (t *HTTPTransport) captureSession(resp *http.Response) {
	sid := resp.Header.Get(sessionHeader)
	if sid == "" {
		return
	}
	t.mu.Lock()
	if sid != t.sessionID {
		t.logger.Debug("agent session identifier updated")
		t.sessionID = sid
	}
	t.mu.Unlock()
}

// snippet truncates raw body bytes for inclusion in error messages.
func snippet(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "…"
}
