package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decred/slog"
)

// TestReadSource tests reading programs from files.
func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	if err := os.WriteFile(path, []byte("print(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := readSource(path)
	if err != nil || src != "print(1)" {
		t.Errorf("Expected the file contents, got %q, %v", src, err)
	}
	if _, err := readSource(filepath.Join(t.TempDir(), "missing.py")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}

// TestLogs tests that subsystem loggers share the configured level.
func TestLogs(t *testing.T) {
	var buf bytes.Buffer
	l := newLogs(&buf, slog.LevelWarn)
	log := l.logger("TEST")
	log.Infof("hidden")
	log.Warnf("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "[WRN] TEST: shown") {
		t.Errorf("Expected only the warning, got %q", out)
	}

	var nilLogs *logs
	nilLogs.logger("TEST").Errorf("discarded")
}
