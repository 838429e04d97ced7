package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.With(String("component", "power")).Debug(context.Background(), "network rebuilt",
		Int("networks", 3),
		Float("satisfaction", 0.5),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "network rebuilt" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if entry["component"] != "power" || entry["networks"] != float64(3) || entry["satisfaction"] != 0.5 {
		t.Fatalf("missing fields in %v", entry)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})
	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestWithSessionLoggerReusesExistingID(t *testing.T) {
	ctx := ContextWithSessionID(context.Background(), "abc")
	ctx, _ = WithSessionLogger(ctx, nil)
	if got := SessionIDFromContext(ctx); got != "abc" {
		t.Fatalf("session id = %q, want abc", got)
	}

	fresh, _ := WithSessionLogger(context.Background(), Noop())
	if SessionIDFromContext(fresh) == "" {
		t.Fatalf("expected a generated session id")
	}
}
