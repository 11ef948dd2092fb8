package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("hello", "k", 1)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestFromContextAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "debug", "text"))
	defer slog.SetDefault(prev)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = ContextWithSessionID(ctx, "sess-1")
	FromContext(ctx).Info("event")

	out := buf.String()
	if !strings.Contains(out, "request_id=req-1") {
		t.Errorf("missing request_id in %q", out)
	}
	if !strings.Contains(out, "session_id=sess-1") {
		t.Errorf("missing session_id in %q", out)
	}
}

func TestClientFromContext(t *testing.T) {
	ip, ua := ClientFromContext(context.Background())
	if ip != "" || ua != "" {
		t.Errorf("empty context = %q, %q", ip, ua)
	}

	ctx := ContextWithClient(context.Background(), "10.0.0.7", "curl/8.4")
	ip, ua = ClientFromContext(ctx)
	if ip != "10.0.0.7" || ua != "curl/8.4" {
		t.Errorf("ClientFromContext = %q, %q", ip, ua)
	}
	if sid := SessionIDFromContext(ctx); sid != "" {
		t.Errorf("client values leaked into session id: %q", sid)
	}
}
