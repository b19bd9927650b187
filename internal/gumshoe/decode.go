package gumshoe

import (
	"encoding/json"
	"fmt"
	"time"
)

// previewLen bounds how much offending payload text ends up in a
// decode error message. Never the full text.
const previewLen = 120

func preview(s string) string {
	if len(s) <= previewLen {
		return s
	}
	return s[:previewLen] + "…"
}

// decodeObject strictly parses payload text as a JSON object.
func decodeObject(kind, text string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &DecodeError{Kind: kind, Msg: fmt.Sprintf("invalid JSON: %v (payload: %q)", err, preview(text))}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &DecodeError{Kind: kind, Msg: fmt.Sprintf("expected object, got %T (payload: %q)", v, preview(text))}
	}
	return obj, nil
}

// requireString extracts a required string field, failing with a
// field-scoped error when absent or of the wrong type.
func requireString(obj map[string]any, kind, field string) (string, error) {
	v, ok := obj[field]
	if !ok {
		return "", &DecodeError{Kind: kind, Field: field, Msg: "missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &DecodeError{Kind: kind, Field: field, Msg: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

// optionalString extracts an optional string field. Absent or
// wrong-typed values silently fall back to "".
func optionalString(obj map[string]any, field string) string {
	s, _ := obj[field].(string)
	return s
}

// optionalStringRef is optionalString preserving the present/absent
// distinction.
func optionalStringRef(obj map[string]any, field string) *string {
	if s, ok := obj[field].(string); ok {
		return &s
	}
	return nil
}

func decodeChat(kind string, obj map[string]any) (Chat, error) {
	id, err := requireString(obj, kind, "id")
	if err != nil {
		return Chat{}, err
	}
	status, err := requireString(obj, kind, "status")
	if err != nil {
		return Chat{}, err
	}
	return Chat{
		ID:           id,
		Status:       status,
		DisplayName:  optionalString(obj, "display_name"),
		FirstMessage: optionalString(obj, "first_message"),
		LastMessage:  optionalString(obj, "last_message"),
		LastActivity: optionalString(obj, "last_activity"),
	}, nil
}

func decodeTurf(kind string, obj map[string]any) (Turf, error) {
	t := Turf{}
	var err error
	if t.ID, err = requireString(obj, kind, "id"); err != nil {
		return Turf{}, err
	}
	if t.Name, err = requireString(obj, kind, "name"); err != nil {
		return Turf{}, err
	}
	if t.Kind, err = requireString(obj, kind, "type"); err != nil {
		return Turf{}, err
	}
	if t.Status, err = requireString(obj, kind, "status"); err != nil {
		return Turf{}, err
	}
	t.OS = optionalString(obj, "os")
	t.Hostname = optionalString(obj, "hostname")
	t.Arch = optionalString(obj, "arch")
	t.Version = optionalString(obj, "version")
	return t, nil
}

// decodeResponseStatus validates the three-variant status union. The
// status discriminator decides which fields are required; a value
// outside the known set is a decode failure, never a default variant.
func decodeResponseStatus(text string) (ResponseStatus, error) {
	const kind = "response status"

	obj, err := decodeObject(kind, text)
	if err != nil {
		return ResponseStatus{}, err
	}

	tag, err := requireString(obj, kind, "status")
	if err != nil {
		return ResponseStatus{}, err
	}

	switch tag {
	case "processing":
		st := ResponseStatus{
			State:   StateProcessing,
			Partial: optionalStringRef(obj, "partial"),
		}
		if n, ok := obj["retry_after_seconds"].(float64); ok {
			st.RetryAfter = time.Duration(n * float64(time.Second))
		}
		return st, nil

	case "complete":
		resp, err := requireString(obj, kind, "response")
		if err != nil {
			return ResponseStatus{}, err
		}
		return ResponseStatus{State: StateComplete, Response: resp}, nil

	case "error":
		reason, err := requireString(obj, kind, "error")
		if err != nil {
			return ResponseStatus{}, err
		}
		return ResponseStatus{State: StateFailed, Reason: reason}, nil

	default:
		return ResponseStatus{}, &DecodeError{
			Kind:  kind,
			Field: "status",
			Msg:   fmt.Sprintf("unrecognized value %q", tag),
		}
	}
}

// requireObjectList extracts a required array-of-objects field.
func requireObjectList(obj map[string]any, kind, field string) ([]map[string]any, error) {
	raw, ok := obj[field]
	if !ok {
		return nil, &DecodeError{Kind: kind, Field: field, Msg: "missing"}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &DecodeError{Kind: kind, Field: field, Msg: fmt.Sprintf("expected array, got %T", raw)}
	}

	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, &DecodeError{Kind: kind, Field: field, Msg: fmt.Sprintf("element %d: expected object, got %T", i, item)}
		}
		out = append(out, rec)
	}
	return out, nil
}
