package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("layout computed", DeliberationID("d-1"), NodeCount(12))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not JSON: %q", buf.String())
	}
	if entry.Level != "INFO" || entry.Message != "layout computed" {
		t.Errorf("Entry = %+v", entry)
	}
	if entry.Fields["deliberation_id"] != "d-1" {
		t.Errorf("Fields = %v", entry.Fields)
	}
	if entry.Fields["node_count"] != float64(12) {
		t.Errorf("node_count = %v", entry.Fields["node_count"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("ignored")
	logger.Info("also ignored")
	logger.Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Got %d lines, want 1: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "kept") {
		t.Errorf("Line = %q", lines[0])
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("store"))
	child.Info("node created", NodeID("n-1"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not JSON: %q", buf.String())
	}
	if entry.Fields["component"] != "store" || entry.Fields["node_id"] != "n-1" {
		t.Errorf("Fields = %v", entry.Fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"nonsense", InfoLevel},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestErrorField(t *testing.T) {
	if f := Error(nil); f.Value != nil {
		t.Errorf("Error(nil).Value = %v", f.Value)
	}
}
