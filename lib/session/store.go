// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

// Package session owns the console's authenticated identity.
//
// Exactly one session record exists: {username, role, token}. It is
// persisted as a JSON file at a well-known path so a restarted console
// comes back authenticated, and it is hydrated synchronously when the
// [Store] is constructed — before the first frame of any guarded
// screen renders, so an already-authenticated user never sees a
// logged-out flash. That synchronous hydration is a hard invariant of
// the store, not an optimization.
//
// Only the Store mutates the session. Every other component reads it
// through [Store.Current] or [Store.Token]; the token is attached to
// requests by lib/apiclient but never stored there. A logout does not
// cancel in-flight requests — the next fetch issued anywhere simply
// observes the now-absent credential.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pmisuite/pmis/lib/apiclient"
)

// Session is the authenticated identity. Token present if and only if
// the user is authenticated; Role is only meaningful alongside Token.
type Session struct {
	// Username is the account name the backend confirmed at login.
	Username string `json:"username"`

	// Role is the authorization role claim returned by the backend.
	Role apiclient.Role `json:"role"`

	// Token is the opaque bearer credential.
	Token string `json:"token"`
}

// FilePath returns the session file location. Checks the
// PMIS_SESSION_FILE environment variable first, then falls back to
// ~/.config/pmis/session.json (XDG aware).
func FilePath() string {
	if envPath := os.Getenv("PMIS_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			// Fallback — this should rarely happen.
			return filepath.Join("/tmp", "pmis-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "pmis", "session.json")
}

// Store holds the current session and its durable copy on disk.
// Safe for concurrent reads from fetch goroutines; only the bubbletea
// update loop calls the mutating methods.
type Store struct {
	mutex   sync.RWMutex
	current *Session

	path   string
	client *apiclient.Client
	logger *slog.Logger
}

// New creates a Store bound to the given file path (empty means
// [FilePath]) and hydrates it synchronously: if a valid session file
// exists, the store starts authenticated. A missing file is a
// logged-out store; a corrupt or incomplete file is discarded with a
// warning rather than surfaced as an error.
func New(path string, client *apiclient.Client, logger *slog.Logger) *Store {
	if path == "" {
		path = FilePath()
	}
	if logger == nil {
		logger = slog.Default()
	}

	store := &Store{
		path:   path,
		client: client,
		logger: logger,
	}

	session, err := readSessionFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("discarding unreadable session file", "path", path, "error", err)
		}
		return store
	}
	store.current = session
	return store
}

// readSessionFile loads and validates a session record. An incomplete
// record (missing username, role, or token) is an error — a session
// without a credential must never hydrate as authenticated.
func readSessionFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}

	if session.Username == "" {
		return nil, fmt.Errorf("session file %s has no username", path)
	}
	if session.Role == "" {
		return nil, fmt.Errorf("session file %s has no role", path)
	}
	if session.Token == "" {
		return nil, fmt.Errorf("session file %s has no token", path)
	}

	return &session, nil
}

// Current returns a copy of the session, or nil when logged out.
// Synchronous, no network effect.
func (s *Store) Current() *Session {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

// Token returns the bearer credential, or "" when logged out.
func (s *Store) Token() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Login authenticates against the backend and, on success, replaces
// the session in memory and on disk. On any failure (transport, bad
// credentials, or a role different from expectedRole) the prior state
// is untouched and the error is an *apiclient.AuthError where the
// failure is an authentication outcome.
func (s *Store) Login(ctx context.Context, username, password string, expectedRole apiclient.Role) error {
	result, err := s.client.Login(ctx, username, password, expectedRole)
	if err != nil {
		return err
	}

	session := &Session{
		Username: result.Username,
		Role:     result.Role,
		Token:    result.AccessToken,
	}

	s.mutex.Lock()
	s.current = session
	s.mutex.Unlock()

	if err := s.save(session); err != nil {
		// The in-memory session is valid; losing durability only
		// costs a re-login after restart.
		s.logger.Warn("session not persisted", "error", err)
	}
	return nil
}

// Logout clears the session and removes the durable copy. Idempotent.
func (s *Store) Logout() {
	s.mutex.Lock()
	s.current = nil
	s.mutex.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("removing session file", "path", s.path, "error", err)
	}
}

// save writes the session file with owner-only permissions (it
// contains the access token). The parent directory is created with
// mode 0700 if absent.
func (s *Store) save(session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(s.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", s.path, err)
	}
	return nil
}
