package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_WritesJSONLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	cleanup, err := Setup(Config{Dir: dir})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := IsReady(); err != nil {
		t.Fatalf("IsReady: %v", err)
	}

	L().Info("council.start", "run_id", "abc")

	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if err := IsReady(); err == nil {
		t.Fatal("expected logger to be reset after cleanup")
	}

	b, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), b)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["msg"] != "council.start" || entry["run_id"] != "abc" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %s", buf.String())
	}

	New(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug line missing: %s", buf.String())
	}
}
