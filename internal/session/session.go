// ABOUTME: Persisted login session: homeserver URL, user ID, access token and device ID
// ABOUTME: Stored as TOML with owner-only permissions so later runs skip discovery and login

package session

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"maunium.net/go/mautrix/id"

	"github.com/florianjacob/synadminctl/internal/matrix"
)

// ErrNotFound is returned by Load when no session file exists.
var ErrNotFound = errors.New("session: no session file")

// Session is the credential of one login. It is never modified after it is
// created; logging in again replaces it.
type Session struct {
	BaseURL     string `toml:"base_url" json:"base_url"`
	UserID      string `toml:"user_id" json:"user_id"`
	AccessToken string `toml:"access_token" json:"-"`
	DeviceID    string `toml:"device_id" json:"device_id"`
}

// User returns the session's user ID.
func (s *Session) User() id.UserID {
	return id.UserID(s.UserID)
}

// Device returns the session's device ID.
func (s *Session) Device() id.DeviceID {
	return id.DeviceID(s.DeviceID)
}

// Validate checks that every field is set and the base URL is usable.
func (s *Session) Validate() error {
	switch {
	case s.BaseURL == "":
		return errors.New("base_url is required")
	case s.UserID == "":
		return errors.New("user_id is required")
	case s.AccessToken == "":
		return errors.New("access_token is required")
	case s.DeviceID == "":
		return errors.New("device_id is required")
	}
	if _, err := matrix.ParseBaseURL(s.BaseURL); err != nil {
		return err
	}
	if _, _, err := s.User().Parse(); err != nil {
		return fmt.Errorf("user_id: %w", err)
	}
	return nil
}

// Channel opens an authenticated channel to the session's homeserver.
func (s *Session) Channel(transport matrix.Transport, logger *slog.Logger) (*matrix.AuthenticatedChannel, error) {
	return matrix.NewAuthenticatedChannel(transport, s.BaseURL, s.AccessToken, logger)
}

// DefaultPath returns $XDG_CONFIG_HOME/synadminctl/session.toml, falling
// back to ~/.config/synadminctl/session.toml.
func DefaultPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "synadminctl-session.toml")
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "synadminctl", "session.toml")
}

// Load reads and validates the session at path. A missing file is
// ErrNotFound; an unreadable or invalid one is any other error.
func Load(path string) (*Session, error) {
	var s Session
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("session file %s: %w", path, err)
	}
	return &s, nil
}

// Save writes s to path with mode 0600, creating the directory with 0700.
// The file is replaced atomically.
func Save(path string, s *Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("refusing to save session: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.toml")
	if err != nil {
		return fmt.Errorf("creating session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting session file mode: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing session file %s: %w", path, err)
	}
	return nil
}

// Delete removes the session file. A missing file is not an error.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file %s: %w", path, err)
	}
	return nil
}

// Store is the persistence collaborator handed to the login flow.
type Store interface {
	Load() (*Session, error)
	Save(*Session) error
	Delete() error
}

// FileStore is a Store backed by one file.
type FileStore struct {
	Path string
}

func (f FileStore) Load() (*Session, error) { return Load(f.Path) }
func (f FileStore) Save(s *Session) error   { return Save(f.Path, s) }
func (f FileStore) Delete() error           { return Delete(f.Path) }
