package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMissingFileIsLoggedOut(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := s.Get(); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}

func TestSetPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Set("abc.def.ghi"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if got := reopened.Get(); got != "abc.def.ghi" {
		t.Fatalf("token not persisted: got %q", got)
	}
}

func TestClearRemovesTokenAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Set("tok"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if got := s.Get(); got != "" {
		t.Fatalf("expected cleared token, got %q", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected session file to be removed")
	}

	// Clearing twice must not fail
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
}

func TestCorruptFileTreatedAsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := s.Get(); got != "" {
		t.Fatalf("expected logged-out store for corrupt file, got %q", got)
	}
}
