// Package session holds the bearer token issued at login.
// The token is persisted as a small JSON document so it survives navigation
// and process restarts. No expiry is checked locally; an expired token is
// only discovered through a rejected request.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"teentech/internal/logging"
)

// fileFormat is the on-disk shape of the session file.
type fileFormat struct {
	Token string `json:"token"`
}

// Store is the process-wide session token store.
// All methods are safe for concurrent use, although the TUI event loop is
// the only writer in practice.
type Store struct {
	mu    sync.RWMutex
	path  string
	token string
	log   *logging.Logger
}

// Open loads the session from path. A missing file means no session; that is
// not an error.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		log:  logging.Get(logging.CategorySession),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		// A corrupt session file is equivalent to being logged out
		s.log.Warn("session file unreadable, starting logged out: %v", err)
		return s, nil
	}

	s.token = f.Token
	return s, nil
}

// Get returns the current token, or "" when no session exists.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set stores the token and persists it.
func (s *Store) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileFormat{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return err
	}

	s.log.Info("session token stored")
	return nil
}

// Clear removes the token from memory and disk. Clearing an absent session
// is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	s.log.Info("session cleared")
	return nil
}
