// Package credentials persists account credentials in the system keyring,
// falling back to plain files when no keyring is available.
package credentials

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

const keyringService = "fastmc"

// ErrNotFound is returned when no credential is stored for an account
var ErrNotFound = errors.New("no stored credential for account")

// Credential is the token material for one account. It is owned by the
// Store and should only be handed out for the duration of a launch.
type Credential struct {
	oauth2.Token
	// Scopes requested when the token was obtained. The provider does not
	// always echo them back, so we carry them ourselves.
	Scopes []string `json:"scopes,omitempty"`
}

// ExpiresWithin reports if the access token expires within the given margin
func (c *Credential) ExpiresWithin(margin time.Duration) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return c.Expiry.Before(time.Now().Add(margin))
}

// Store persists credentials, keyed by account id. Safe for
// concurrent use, refreshes for different accounts hit it in parallel.
type Store struct {
	globalDir string

	mu        sync.Mutex
	noKeyRing bool
}

// New creates a credential store. globalDir is only used for the
// file fallback mode.
func New(globalDir string) *Store {
	return &Store{globalDir: globalDir}
}

// DisableKeyRing switches the store to plain files permanently.
// Flipped automatically when a keyring backend fails.
func (s *Store) DisableKeyRing() {
	s.mu.Lock()
	s.noKeyRing = true
	s.mu.Unlock()
}

func (s *Store) keyRingDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noKeyRing
}

// Save persists the credential for the given account
func (s *Store) Save(id uuid.UUID, cred *Credential) error {
	blob, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	if s.keyRingDisabled() {
		return s.writeCredentialFile(id, blob)
	}
	if err := keyring.Set(keyringService, keyringUser(id), string(blob)); err != nil {
		s.DisableKeyRing()
		return s.writeCredentialFile(id, blob)
	}
	return nil
}

// Load returns the stored credential for the given account.
// Returns ErrNotFound if there is none.
func (s *Store) Load(id uuid.UUID) (*Credential, error) {
	if s.keyRingDisabled() {
		return s.readCredentialFile(id)
	}

	raw, err := keyring.Get(keyringService, keyringUser(id))
	switch {
	case err == nil:
		cred := Credential{}
		if err := json.Unmarshal([]byte(raw), &cred); err != nil {
			return nil, err
		}
		return &cred, nil
	case errors.Is(err, keyring.ErrNotFound):
		return nil, ErrNotFound
	default:
		// no usable keyring, try files from now on
		s.DisableKeyRing()
		return s.readCredentialFile(id)
	}
}

// Delete removes the credential for the given account.
// Deleting an absent entry is not an error.
func (s *Store) Delete(id uuid.UUID) error {
	if !s.keyRingDisabled() {
		err := keyring.Delete(keyringService, keyringUser(id))
		if err == nil || errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		s.DisableKeyRing()
	}

	err := os.Remove(s.credentialFile(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func keyringUser(id uuid.UUID) string {
	return "account-" + id.String()
}

func (s *Store) credentialFile(id uuid.UUID) string {
	return filepath.Join(s.globalDir, "credentials", id.String()+".json")
}

func (s *Store) readCredentialFile(id uuid.UUID) (*Credential, error) {
	raw, err := os.ReadFile(s.credentialFile(id))
	switch {
	case err == nil:
		cred := Credential{}
		if err := json.Unmarshal(raw, &cred); err != nil {
			return nil, err
		}
		return &cred, nil
	case os.IsNotExist(err):
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (s *Store) writeCredentialFile(id uuid.UUID, content []byte) error {
	dir := filepath.Join(s.globalDir, "credentials")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(s.credentialFile(id), content, 0600)
}
