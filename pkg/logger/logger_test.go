package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestFromContextAddsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	base, err := New(Config{Level: "debug", Encoding: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	ctx := ContextWithUserID(ContextWithRequestID(context.Background(), "req-1"), 9)
	FromContext(ctx, base).Info("hello")
	_ = base.Sync()

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("expected request_id, got %v", entry["request_id"])
	}
	if entry["user_id"] != float64(9) {
		t.Fatalf("expected user_id 9, got %v", entry["user_id"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("expected timestamp key in %v", entry)
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	base, err := New(Config{Level: "chatty", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	base.Debug("hidden")
	_ = base.Sync()
	if buf.Len() != 0 {
		t.Fatalf("debug output should be filtered at info level, got %q", buf.String())
	}
}
