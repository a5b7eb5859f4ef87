package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("Failed to parse JSON log %q: %v", line, err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"default config", DefaultConfig()},
		{"json format", Config{Level: "debug", Format: "json"}},
		{"console format", Config{Level: "info", Format: "console"}},
		{"text alias", Config{Level: "error", Format: "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message", "route", "/api/job")
	l.Error("error message")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (warn and error)", len(entries))
	}
	if entries[0]["msg"] != "warn message" || entries[0]["level"] != "warn" {
		t.Errorf("first entry = %v", entries[0])
	}
	if entries[0]["route"] != "/api/job" {
		t.Errorf("route = %v, want /api/job", entries[0]["route"])
	}
	if entries[1]["level"] != "error" {
		t.Errorf("second entry level = %v, want error", entries[1]["level"])
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "error", Format: "json", Output: &buf})

	l.Info("hidden")
	SetLevel("debug")
	defer SetLevel("warn")
	l.Debug("visible")

	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}
	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["msg"] != "visible" {
		t.Errorf("entries = %v, want only the debug entry", entries)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"INFO":    "info",
		"warning": "warn",
		"error":   "error",
		"bogus":   "info",
		"":        "info",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	l.With("command", "jobs list").Info("done", "count", 3)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0]["command"] != "jobs list" {
		t.Errorf("command = %v", entries[0]["command"])
	}
	if entries[0]["count"] != float64(3) {
		t.Errorf("count = %v", entries[0]["count"])
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithRequestID(context.Background(), "01HZX")
	l.WithContext(ctx).Info("request")
	l.WithContext(context.Background()).Info("no request")

	entries := decodeLines(t, &buf)
	if entries[0]["request_id"] != "01HZX" {
		t.Errorf("request_id = %v, want 01HZX", entries[0]["request_id"])
	}
	if _, ok := entries[1]["request_id"]; ok {
		t.Error("request_id should be absent without one in context")
	}
}

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}

	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})
	old := Default()
	SetDefault(l)
	defer SetDefault(old)

	Default().Info("through default")
	if !strings.Contains(buf.String(), "through default") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing")
	l.With("a", 1).Info("still nothing")
	if err := Sync(l); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}
