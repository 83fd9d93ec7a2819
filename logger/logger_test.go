package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitLoggerSwitchesFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	InitLogger(first)
	InitLogger(first)
	InitLogger(second)
	Log.Infow("after switch")
	Sync()

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read first log: %v", err)
	}
	if n := strings.Count(string(data), "Logger initialized"); n != 1 {
		t.Errorf("first log initialized %d times, want 1", n)
	}
	if strings.Contains(string(data), "after switch") {
		t.Error("message written to the previous file")
	}

	data, err = os.ReadFile(second)
	if err != nil {
		t.Fatalf("read second log: %v", err)
	}
	if !strings.Contains(string(data), "after switch") {
		t.Errorf("second log missing message:\n%s", data)
	}
}
