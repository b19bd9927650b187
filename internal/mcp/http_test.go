package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestHTTPTransport_SendHeaders(t *testing.T) {
	var mu sync.Mutex
	var gotAuth, gotContentType, gotAccept, gotClientInfo string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		gotClientInfo = r.Header.Get("X-Client-Info")
		mu.Unlock()
		json.NewEncoder(w).Encode(Response{JSONRPC: "2.0", ID: 1, Result: json.RawMessage(`{}`)})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "sekrit"})
	if _, err := tr.Send(context.Background(), NewRequest(1, "ping", nil)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotAuth != "Bearer sekrit" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer sekrit")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if !strings.HasPrefix(gotClientInfo, "gumshoe/") {
		t.Errorf("X-Client-Info = %q, want gumshoe/ prefix", gotClientInfo)
	}
}

func TestHTTPTransport_SessionRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var seen []string // session header observed on each request
	sessions := []string{"s1", "s1", "s2"}

	var n int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Mcp-Session-Id"))
		sid := sessions[n]
		n++
		mu.Unlock()
		w.Header().Set("Mcp-Session-Id", sid)
		json.NewEncoder(w).Encode(Response{JSONRPC: "2.0", Result: json.RawMessage(`{}`)})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "t"})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := tr.Send(ctx, NewRequest(int64(i+1), "ping", nil)); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if seen[0] != "" {
		t.Errorf("first request carried session %q, want none", seen[0])
	}
	if seen[1] != "s1" {
		t.Errorf("second request session = %q, want s1", seen[1])
	}
	if seen[2] != "s1" {
		t.Errorf("third request session = %q, want s1", seen[2])
	}
	if tr.SessionID() != "s2" {
		t.Errorf("SessionID() = %q, want rotated s2", tr.SessionID())
	}
}

func TestHTTPTransport_ClearSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Mcp-Session-Id", "abc")
		json.NewEncoder(w).Encode(Response{JSONRPC: "2.0", Result: json.RawMessage(`{}`)})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "t"})
	if _, err := tr.Send(context.Background(), NewRequest(1, "ping", nil)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if tr.SessionID() != "abc" {
		t.Fatalf("SessionID() = %q, want abc", tr.SessionID())
	}

	tr.ClearSession()
	if tr.SessionID() != "" {
		t.Errorf("SessionID() after clear = %q, want empty", tr.SessionID())
	}
}

func TestHTTPTransport_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session not found", http.StatusNotFound)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "t"})
	_, err := tr.Send(context.Background(), NewRequest(1, "ping", nil))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("error = %T, want *HTTPError", err)
	}
	if he.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", he.Status)
	}
	if !strings.Contains(he.Body, "session not found") {
		t.Errorf("Body = %q, want server message", he.Body)
	}
}

func TestHTTPTransport_BadEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "t"})
	_, err := tr.Send(context.Background(), NewRequest(1, "ping", nil))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrBadEnvelope) {
		t.Fatalf("error = %v, want ErrBadEnvelope", err)
	}
	if !strings.Contains(err.Error(), "definitely not json") {
		t.Errorf("error %q should include a body snippet", err)
	}
}

func TestHTTPTransport_BadEnvelopeSnippetBounded(t *testing.T) {
	long := strings.Repeat("x", 5000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(long))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "t"})
	_, err := tr.Send(context.Background(), NewRequest(1, "ping", nil))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(err.Error()) > 1000 {
		t.Errorf("error message is %d bytes; body snippet must be bounded", len(err.Error()))
	}
}

func TestHTTPTransport_RPCErrorInEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: -32000, Message: "investigation backend offline"},
		})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "t"})
	resp, err := tr.Send(context.Background(), NewRequest(1, "ping", nil))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("expected rpc error in envelope")
	}
	if resp.Error.Message != "investigation backend offline" {
		t.Errorf("Message = %q", resp.Error.Message)
	}
}

func TestHTTPTransport_NotifyAccepts202(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var notif Notification
		json.NewDecoder(r.Body).Decode(&notif)
		method = notif.Method
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "t"})
	if err := tr.Notify(context.Background(), NewNotification("notifications/initialized", nil)); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if method != "notifications/initialized" {
		t.Errorf("server saw method %q", method)
	}
}

func TestHTTPTransport_NotifyStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "t"})
	err := tr.Notify(context.Background(), NewNotification("notifications/initialized", nil))

	var he *HTTPError
	if !errors.As(err, &he) || he.Status != http.StatusInternalServerError {
		t.Fatalf("error = %v, want HTTP 500", err)
	}
}

func TestHTTPTransport_PerCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "t", CallTimeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := tr.Send(context.Background(), NewRequest(1, "ping", nil))
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call took %v, per-call timeout did not fire", elapsed)
	}
}

func TestHTTPTransport_CallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{URL: srv.URL, Token: "t"})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := tr.Send(ctx, NewRequest(1, "ping", nil))
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call took %v after cancellation", elapsed)
	}
}
