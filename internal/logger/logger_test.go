package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestGetLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		" Info ":  "INFO",
		"warning": "WARN",
		"ERROR":   "ERROR",
		"verbose": "INFO",
		"":        "INFO",
	}
	for in, want := range tests {
		if got := GetLevel(in); got != want {
			t.Errorf("GetLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetupWritesJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := Setup(Config{Level: "warn", App: "dash", Version: "1.2.3", Output: &buf})

	log.Info("hidden")
	log.Warn("shown", "answer_id", "a1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "shown" || entry["app"] != "dash" || entry["answer_id"] != "a1" {
		t.Errorf("Unexpected entry: %v", entry)
	}
}
