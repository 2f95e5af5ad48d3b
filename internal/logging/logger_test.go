package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "file", "a.txt")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info record to be filtered, got %q", out)
	}
	if !strings.Contains(out, "level=warn") || !strings.Contains(out, "file=a.txt") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("pass finished", "pass", "words")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["level"] != "debug" || record["pass"] != "words" {
		t.Fatalf("unexpected record %v", record)
	}
	src, ok := record["source"].(string)
	if !ok || !strings.HasPrefix(src, "logger_test.go:") {
		t.Fatalf("expected short source, got %v", record["source"])
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" Warning ")
	if err != nil || level != slog.LevelWarn {
		t.Fatalf("expected warn, got %v (%v)", level, err)
	}
}
