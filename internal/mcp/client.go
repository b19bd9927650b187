package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gumshoehq/gumshoe/internal/buildinfo"
)

// protocolVersion is the protocol version we advertise during initialization.
const protocolVersion = "2024-11-05"

// requestIDCeiling bounds allocated JSON-RPC request identifiers.
// Allocation is strictly increasing up to the ceiling, then wraps back
// to 1 to keep identifiers small. Session invalidation resets the
// counter so a fresh session starts again from 1.
const requestIDCeiling = 1_000_000

// initState tracks where the client is in its session lifecycle.
type initState int

const (
	stateUninitialized initState = iota
	stateInitializing
	stateReady
)

// handshake is the single shared in-flight initialization attempt.
// Concurrent callers that find the session uninitialized all wait on
// the same handshake instead of issuing duplicates. err is written
// exactly once, before done is closed.
type handshake struct {
	done chan struct{}
	err  error
}

// ContentBlock is a single content item in a tools/call result.
// Unrecognized types are passed through untouched; only a text block
// with no text field is malformed.
type ContentBlock struct {
	Type string  `json:"type"`
	Text *string `json:"text,omitempty"`
}

// TextContent returns the block's text payload, or "" for non-text blocks.
func (b ContentBlock) TextContent() string {
	if b.Type != "text" || b.Text == nil {
		return ""
	}
	return *b.Text
}

// TextBlock builds a text content block. Mostly useful in tests and fakes.
func TextBlock(s string) ContentBlock {
	return ContentBlock{Type: "text", Text: &s}
}

// JoinText concatenates the payloads of all text blocks, in order.
// Non-text blocks contribute nothing.
func JoinText(blocks []ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.TextContent())
	}
	return sb.String()
}

// callToolResult is the result payload of a tools/call response.
type callToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// serverInfo is returned in the initialize response.
type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// initializeResult is the initialize response result.
type initializeResult struct {
	ProtocolVersion string     `json:"protocolVersion"`
	ServerInfo      serverInfo `json:"serverInfo"`
}

// Client talks to the agent service over a Transport. It owns the
// session lifecycle: the lazy initialize/initialized handshake, the
// bounded request-id counter, and recovery when the server forgets the
// session. Safe for concurrent use.
type Client struct {
	transport Transport
	logger    *slog.Logger

	mu      sync.Mutex
	state   initState
	pending *handshake
	lastID  int64
}

// NewClient creates a client for the agent service. The session is
// established lazily on the first call.
func NewClient(transport Transport, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		transport: transport,
		logger:    logger,
	}
}

// nextRequestID allocates the next request identifier: strictly
// increasing and collision-free under concurrency, wrapping back to 1
// past the ceiling.
func (c *Client) nextRequestID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastID++
	if c.lastID > requestIDCeiling {
		c.lastID = 1
	}
	return c.lastID
}

// ensureReady makes sure the handshake has completed, performing it if
// necessary. However many callers arrive concurrently, at most one
// initialize handshake is ever in flight; the rest wait for its
// outcome. A failed handshake reverts to uninitialized so the next
// caller retries from scratch.
func (c *Client) ensureReady(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case stateReady:
		c.mu.Unlock()
		return nil

	case stateInitializing:
		p := c.pending
		c.mu.Unlock()
		select {
		case <-p.done:
			return p.err
		case <-ctx.Done():
			return ctx.Err()
		}

	default: // stateUninitialized
		p := &handshake{done: make(chan struct{})}
		c.pending = p
		c.state = stateInitializing
		c.mu.Unlock()

		err := c.initialize(ctx)

		c.mu.Lock()
		if err != nil {
			c.state = stateUninitialized
		} else {
			c.state = stateReady
		}
		c.pending = nil
		c.mu.Unlock()

		p.err = err
		close(p.done)
		return err
	}
}

// initialize performs the handshake: an initialize request followed by
// the notifications/initialized notification. No domain call may be
// issued before this completes.
func (c *Client) initialize(ctx context.Context) error {
	params := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "gumshoe",
			"version": buildinfo.Version,
		},
	}

	resp, err := c.send(ctx, "initialize", params)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	var result initializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return fmt.Errorf("unmarshal initialize result: %w", err)
	}

	c.logger.Info("agent session established",
		"server_name", result.ServerInfo.Name,
		"server_version", result.ServerInfo.Version,
		"protocol_version", result.ProtocolVersion,
	)

	if err := c.transport.Notify(ctx, NewNotification("notifications/initialized", nil)); err != nil {
		return fmt.Errorf("send initialized notification: %w", err)
	}

	return nil
}

// invalidate discards the session after the server reported it gone:
// the identifier is forgotten and the request counter reset, forcing
// the next call through a fresh handshake. A handshake already in
// flight (another caller recovering) is left alone.
func (c *Client) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateReady {
		return
	}
	c.state = stateUninitialized
	c.lastID = 0
	c.transport.ClearSession()
}

// CallTool invokes a named tool with the given arguments and returns
// the result content blocks. If the server reports the session gone
// (HTTP 404), the session is re-established and the call retried
// exactly once; a second session loss propagates unchanged.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) ([]ContentBlock, error) {
	blocks, err := c.callTool(ctx, name, args)
	if err == nil || !IsSessionNotFound(err) {
		return blocks, err
	}

	c.logger.Warn("agent session lost, re-establishing", "tool", name)
	c.invalidate()
	return c.callTool(ctx, name, args)
}

func (c *Client) callTool(ctx context.Context, name string, args map[string]any) ([]ContentBlock, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	params := map[string]any{
		"name":      name,
		"arguments": args,
	}

	resp, err := c.send(ctx, "tools/call", params)
	if err != nil {
		return nil, fmt.Errorf("tools/call %s: %w", name, err)
	}

	var result callToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("unmarshal tools/call result: %w", err)
	}

	for i, b := range result.Content {
		if b.Type == "text" && b.Text == nil {
			return nil, fmt.Errorf("tools/call %s: content item %d: text block missing text field", name, i)
		}
	}

	if result.IsError {
		return nil, &ToolError{Tool: name, Message: toolErrorMessage(result.Content)}
	}

	return result.Content, nil
}

// Ping checks whether the agent service is responsive.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.ensureReady(ctx); err != nil {
		return err
	}
	_, err := c.send(ctx, "ping", nil)
	return err
}

// Close shuts down the client and its transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// send issues a JSON-RPC request and surfaces server-reported errors.
func (c *Client) send(ctx context.Context, method string, params any) (*Response, error) {
	req := NewRequest(c.nextRequestID(), method, params)

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	return resp, nil
}

// toolErrorMessage picks the first text fragment as the failure
// message, falling back to a generic one when the result has none.
func toolErrorMessage(blocks []ContentBlock) string {
	for _, b := range blocks {
		if b.Type == "text" && b.Text != nil {
			return *b.Text
		}
	}
	return "tool call failed"
}
