package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"WARN", log.WarnLevel},
		{"warning", log.WarnLevel},
		{" error ", log.ErrorLevel},
		{"info", log.InfoLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPageEvents(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.PageGenerated("/docs/fase-1.md", "/site/fase-1.html", 2048)
	l.PageFailed("/docs/fase-2.md", "/site/fase-2.html", errors.New("no such file"))
	l.AnchorMissing("/docs/fase-3.md", "## Objetivo")

	out := buf.String()
	for _, want := range []string{"page generated", "bytes=2048", "page failed", "no such file"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "anchor not found") {
		t.Error("Debug events should be filtered at the default level")
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phasedocs.log")
	var console bytes.Buffer

	l, cleanup, err := NewFileLogger(path, log.InfoLevel, &console)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	l.GenerateCompleted(7, 0, 0)
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "pages_generated=7") {
		t.Errorf("Expected file to contain the event, got:\n%s", data)
	}
	if !strings.Contains(console.String(), "generation completed") {
		t.Error("Expected event on the extra writer too")
	}

	if _, _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.log"), log.InfoLevel); err == nil {
		t.Error("Expected error for a log file in a missing directory")
	}
}
