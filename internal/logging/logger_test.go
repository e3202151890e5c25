package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_JSONAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelInfo, FormatJSON).WithProject("launch").WithScenario("worst")

	l.Info("solved", "makespan", 181.0)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["project"] != "launch" || entry["scenario"] != "worst" {
		t.Errorf("missing attributes: %v", entry)
	}
	if entry["makespan"] != 181.0 {
		t.Errorf("makespan = %v, want 181", entry["makespan"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "warn", FormatText)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("expected warn entry, got %q", out)
	}
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got.String() != "INFO" {
		t.Errorf("parseLevel(verbose) = %v, want INFO", got)
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.Info("nothing happens")
	if l.With("k", "v") != nil {
		t.Error("With on nil logger should return nil")
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil logger: %v", err)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "projplan.log")
	l, err := NewFileLogger(path, LevelDebug)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Debug("hello")
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log file content = %q", data)
	}
}
