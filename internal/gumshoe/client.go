package gumshoe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gumshoehq/gumshoe/internal/mcp"
)

// ToolCaller is the slice of the RPC client the domain layer needs.
// Satisfied by *mcp.Client.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) ([]mcp.ContentBlock, error)
}

// ClientConfig configures a domain client.
type ClientConfig struct {
	// RPC issues the underlying tool calls.
	RPC ToolCaller

	// Logger is the structured logger for domain diagnostics.
	Logger *slog.Logger

	// Stream tunes the streaming poller. Zero fields take defaults.
	Stream StreamConfig
}

// Client exposes the agent service's domain operations as typed
// methods. Safe for concurrent use; concurrent streaming calls share
// the underlying session.
type Client struct {
	rpc    ToolCaller
	logger *slog.Logger
	stream StreamConfig
}

// NewClient creates a domain client over an RPC tool caller.
func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		rpc:    cfg.RPC,
		logger: logger,
		stream: cfg.Stream.withDefaults(),
	}
}

// callText invokes a tool and concatenates the text fragments of its
// result into the raw domain payload.
func (c *Client) callText(ctx context.Context, tool string, args map[string]any) (string, error) {
	blocks, err := c.rpc.CallTool(ctx, tool, args)
	if err != nil {
		return "", err
	}
	return mcp.JoinText(blocks), nil
}

// StartChat creates a new chat and returns its id.
func (c *Client) StartChat(ctx context.Context) (string, error) {
	text, err := c.callText(ctx, "start_chat", nil)
	if err != nil {
		return "", err
	}

	// The payload is the JSON-encoded chat id itself.
	var id string
	if err := json.Unmarshal([]byte(text), &id); err != nil {
		return "", &DecodeError{Kind: "chat id", Msg: fmt.Sprintf("expected JSON string (payload: %q)", preview(text))}
	}
	if id == "" {
		return "", &DecodeError{Kind: "chat id", Msg: "empty"}
	}
	return id, nil
}

// ListChats returns the chats known to the agent service.
func (c *Client) ListChats(ctx context.Context) ([]Chat, error) {
	text, err := c.callText(ctx, "list_chats", nil)
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject("chat list", text)
	if err != nil {
		return nil, err
	}
	records, err := requireObjectList(obj, "chat list", "chats")
	if err != nil {
		return nil, err
	}

	chats := make([]Chat, 0, len(records))
	for _, rec := range records {
		chat, err := decodeChat("chat", rec)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

// SendMessage submits a message to a chat and returns the pending
// exchange identifying the server-side task. The response is fetched
// separately via GetResponse, or via Stream for the blocking form.
func (c *Client) SendMessage(ctx context.Context, chatID, message string) (Exchange, error) {
	text, err := c.callText(ctx, "send_message", map[string]any{
		"chat_id": chatID,
		"message": message,
	})
	if err != nil {
		return Exchange{}, err
	}

	const kind = "exchange"
	obj, err := decodeObject(kind, text)
	if err != nil {
		return Exchange{}, err
	}
	ex := Exchange{}
	if ex.RequestID, err = requireString(obj, kind, "request_id"); err != nil {
		return Exchange{}, err
	}
	if ex.ChatID, err = requireString(obj, kind, "chat_id"); err != nil {
		return Exchange{}, err
	}
	return ex, nil
}

// GetResponse polls the status of a pending exchange.
func (c *Client) GetResponse(ctx context.Context, requestID string) (ResponseStatus, error) {
	text, err := c.callText(ctx, "get_response", map[string]any{
		"request_id": requestID,
	})
	if err != nil {
		return ResponseStatus{}, err
	}
	return decodeResponseStatus(text)
}

// Cancel asks the server to stop a chat's running investigation.
func (c *Client) Cancel(ctx context.Context, chatID string) (CancelResult, error) {
	text, err := c.callText(ctx, "cancel", map[string]any{
		"chat_id": chatID,
	})
	if err != nil {
		return CancelResult{}, err
	}

	const kind = "cancel result"
	obj, err := decodeObject(kind, text)
	if err != nil {
		return CancelResult{}, err
	}
	status, err := requireString(obj, kind, "status")
	if err != nil {
		return CancelResult{}, err
	}
	return CancelResult{
		Status:  status,
		Message: optionalString(obj, "message"),
	}, nil
}

// ListTurfs returns the connected systems the agent service can act on.
func (c *Client) ListTurfs(ctx context.Context) ([]Turf, error) {
	text, err := c.callText(ctx, "list_turfs", nil)
	if err != nil {
		return nil, err
	}
	turfs, _, err := decodeTurfList("turf list", text)
	return turfs, err
}

// SearchTurfs filters turfs server-side and returns the matches along
// with the server-reported match count.
func (c *Client) SearchTurfs(ctx context.Context, filter TurfFilter) ([]Turf, int, error) {
	args := map[string]any{}
	if filter.Name != "" {
		args["name"] = filter.Name
	}
	if filter.Kind != "" {
		args["type"] = filter.Kind
	}
	if filter.OS != "" {
		args["os"] = filter.OS
	}
	if filter.Status != "" {
		args["status"] = filter.Status
	}

	text, err := c.callText(ctx, "search_turfs", args)
	if err != nil {
		return nil, 0, err
	}

	const kind = "turf search result"
	turfs, obj, err := decodeTurfList(kind, text)
	if err != nil {
		return nil, 0, err
	}
	n, ok := obj["count"].(float64)
	if !ok {
		return nil, 0, &DecodeError{Kind: kind, Field: "count", Msg: "missing or not a number"}
	}
	return turfs, int(n), nil
}

// decodeTurfList decodes a {turfs: [...]} payload, returning the
// parsed records and the enclosing object for extra fields.
func decodeTurfList(kind, text string) ([]Turf, map[string]any, error) {
	obj, err := decodeObject(kind, text)
	if err != nil {
		return nil, nil, err
	}
	records, err := requireObjectList(obj, kind, "turfs")
	if err != nil {
		return nil, nil, err
	}

	turfs := make([]Turf, 0, len(records))
	for _, rec := range records {
		turf, err := decodeTurf("turf", rec)
		if err != nil {
			return nil, nil, err
		}
		turfs = append(turfs, turf)
	}
	return turfs, obj, nil
}
