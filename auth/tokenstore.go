package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/portalhq/portal-cli/model"
)

// Credentials is the on-disk shape of a saved session: the bearer
// token and the profile snapshot, always together.
type Credentials struct {
	Token   string     `json:"token"`
	User    model.User `json:"user"`
	SavedAt time.Time  `json:"saved_at"`
}

// TokenStore persists credentials in a single JSON file. Keeping both
// keys in one file is what makes Save and Clear atomic from the
// caller's perspective: there is no window where a token exists
// without its user or vice versa.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store backed by the given file path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// DefaultCredentialsPath returns the standard credentials location.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "portal-cli-credentials.json"
	}
	return filepath.Join(home, ".config", "portal-cli", "credentials.json")
}

// Save persists the token and user together. The file is written to a
// temp path and renamed into place so a crash mid-write never leaves a
// half-written credentials file.
func (s *TokenStore) Save(token string, user *model.User) error {
	if token == "" || user == nil {
		return fmt.Errorf("refusing to save partial credentials")
	}

	creds := Credentials{Token: token, User: *user, SavedAt: time.Now()}
	payload, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("failed to create temp credentials file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set credentials permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close credentials file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to install credentials file: %w", err)
	}
	return nil
}

// Load returns the saved credentials, or nil when none exist. A
// malformed or partial file (token without user, user without token)
// is treated as corrupt: it is cleared and Load reports absence.
// Corruption is never surfaced as an error to callers.
func (s *TokenStore) Load() *Credentials {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		s.Clear()
		return nil
	}
	if creds.Token == "" || creds.User.Email == "" {
		s.Clear()
		return nil
	}
	return &creds
}

// Clear removes the credentials file. Clearing an already-empty store
// is not an error.
func (s *TokenStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
