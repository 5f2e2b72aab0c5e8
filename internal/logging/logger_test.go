package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Info("loaded dataset", "rows", 8)
	l.Warn("model unavailable", "error", "timeout")

	out := buf.String()
	if strings.Contains(out, "loaded dataset") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "model unavailable") || !strings.Contains(out, "error=timeout") {
		t.Errorf("expected warn line, got %q", out)
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, JSONFormat: true, Output: &buf}).With("component", "chat")
	l.Debug("routed query", "category", "waste")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	if entry["component"] != "chat" || entry["category"] != "waste" || entry["level"] != "DEBUG" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestGlobal(t *testing.T) {
	SetGlobal(nil)
	if Global() == nil {
		t.Fatal("Global should never return nil")
	}

	var buf bytes.Buffer
	SetGlobal(New(Config{Output: &buf}))
	defer SetGlobal(nil)

	Info("snapshot reloaded")
	if !strings.Contains(buf.String(), "snapshot reloaded") {
		t.Errorf("expected global logger output, got %q", buf.String())
	}
}
