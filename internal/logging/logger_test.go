package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetDisabledReturnsNoop(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, false); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer CloseAll()

	l := Get(CategoryAPI)
	// Must not panic and must not create files
	l.Info("should go nowhere")
	l.Error("should go nowhere either")

	if _, err := os.Stat(filepath.Join(dir, "logs")); !os.IsNotExist(err) {
		t.Fatalf("expected no logs directory in disabled mode")
	}
}

func TestEnabledWritesCategoryFile(t *testing.T) {
	dir := t.TempDir()
	logsDir = ""
	loggers = make(map[Category]*Logger)
	if err := Initialize(dir, true); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer CloseAll()

	Get(CategorySession).Info("token stored")

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("logs dir not created: %v", err)
	}
	var found bool
	for _, e := range entries {
		if strings.Contains(e.Name(), string(CategorySession)) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a session category log file, got %v", entries)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logsDir = ""
	loggers = make(map[Category]*Logger)
	if err := Initialize(dir, true); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer func() {
		SetLevel(LevelInfo)
		CloseAll()
	}()

	SetLevel(LevelError)
	l := Get(CategoryUI)
	l.Info("filtered out")
	l.Error("kept")

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("logs dir not created: %v", err)
	}
	for _, e := range entries {
		if !strings.Contains(e.Name(), string(CategoryUI)) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, "logs", e.Name()))
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		if strings.Contains(string(data), "filtered out") {
			t.Fatalf("info line written despite error-level filter")
		}
		if !strings.Contains(string(data), "kept") {
			t.Fatalf("error line missing from log")
		}
	}
}
