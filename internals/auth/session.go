package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fastmc/fastmc/internals/credentials"
	"github.com/google/uuid"
)

// DefaultFreshnessMargin is how long a token handed out for a launch
// must at least stay valid
const DefaultFreshnessMargin = 60 * time.Second

// SessionManager owns the account list and drives login and refresh.
// It is the only writer of accounts.json and the credential store.
type SessionManager struct {
	store     *credentials.Store
	flow      *DeviceAuthFlow
	resolver  ProfileResolver
	globalDir string

	mu       sync.Mutex
	accounts []Account
	active   uuid.UUID

	// refreshMu guards refreshLocks, not the refresh exchanges themselves
	refreshMu    sync.Mutex
	refreshLocks map[uuid.UUID]*sync.Mutex
}

// accountsFile is the on-disk shape of the account list
type accountsFile struct {
	Active   uuid.UUID `json:"active"`
	Accounts []Account `json:"accounts"`
}

// NewSessionManager loads the account list from globalDir (a missing
// file just means no accounts yet)
func NewSessionManager(store *credentials.Store, flow *DeviceAuthFlow, resolver ProfileResolver, globalDir string) (*SessionManager, error) {
	m := &SessionManager{
		store:        store,
		flow:         flow,
		resolver:     resolver,
		globalDir:    globalDir,
		refreshLocks: make(map[uuid.UUID]*sync.Mutex),
	}

	raw, err := os.ReadFile(m.accountsPath())
	switch {
	case err == nil:
		file := accountsFile{}
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, err
		}
		m.accounts = file.Accounts
		m.active = file.Active
	case os.IsNotExist(err):
		// first run
	default:
		return nil, err
	}

	return m, nil
}

func (m *SessionManager) accountsPath() string {
	return filepath.Join(m.globalDir, "accounts.json")
}

// save persists the account list. callers must hold m.mu
func (m *SessionManager) save() error {
	if err := os.MkdirAll(m.globalDir, 0700); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(accountsFile{Active: m.active, Accounts: m.accounts}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.accountsPath(), blob, 0600)
}

// Accounts returns a copy of all known accounts
func (m *SessionManager) Accounts() []Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]Account, len(m.accounts))
	copy(list, m.accounts)
	return list
}

// Active returns the currently active account, if any
func (m *SessionManager) Active() (*Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].ID == m.active {
			account := m.accounts[i]
			return &account, true
		}
	}
	return nil, false
}

// SetActive marks the given account as the active one
func (m *SessionManager) SetActive(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			m.active = id
			return m.save()
		}
	}
	return ErrNotFound
}

// Get returns the account with the given id
func (m *SessionManager) Get(id uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			account := m.accounts[i]
			return &account, nil
		}
	}
	return nil, ErrNotFound
}

// LoginMicrosoft starts a new device code session. The caller shows the
// user code and then keeps calling CheckLogin on a timer.
func (m *SessionManager) LoginMicrosoft(ctx context.Context) (*DeviceCodeSession, error) {
	return m.flow.Start(ctx)
}

// CheckLogin polls the session once. On authorization the account is
// created (or updated), its credential stored and it becomes the active
// account.
func (m *SessionManager) CheckLogin(ctx context.Context, session *DeviceCodeSession) (*PollOutcome, error) {
	alreadyDone := session.State() == StateAuthorized

	outcome, err := m.flow.Poll(ctx, session)
	if err != nil {
		return nil, err
	}
	if outcome.State != StateAuthorized || alreadyDone {
		return outcome, nil
	}

	profile, err := m.resolver.Profile(ctx, outcome.Credential.AccessToken)
	if err != nil {
		return nil, err
	}

	if _, err := m.upsertMicrosoft(profile, outcome.Credential); err != nil {
		return nil, err
	}
	return outcome, nil
}

func (m *SessionManager) upsertMicrosoft(profile *Profile, cred *credentials.Credential) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var account *Account
	for i := range m.accounts {
		if m.accounts[i].Kind == KindMicrosoft && m.accounts[i].ProfileID == profile.ID {
			m.accounts[i].Name = profile.Name
			account = &m.accounts[i]
			break
		}
	}
	if account == nil {
		m.accounts = append(m.accounts, Account{
			ID:        uuid.New(),
			Name:      profile.Name,
			Kind:      KindMicrosoft,
			ProfileID: profile.ID,
		})
		account = &m.accounts[len(m.accounts)-1]
	}

	if err := m.store.Save(account.ID, cred); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	m.active = account.ID
	if err := m.save(); err != nil {
		return nil, err
	}
	result := *account
	return &result, nil
}

// CreateOffline creates (or reactivates) an offline account. No network,
// no credential.
func (m *SessionManager) CreateOffline(name string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.accounts {
		if m.accounts[i].Kind == KindOffline && m.accounts[i].Name == name {
			m.active = m.accounts[i].ID
			if err := m.save(); err != nil {
				return nil, err
			}
			account := m.accounts[i]
			return &account, nil
		}
	}

	account := Account{
		ID:        uuid.New(),
		Name:      name,
		Kind:      KindOffline,
		ProfileID: OfflineUUID(name).String(),
	}
	m.accounts = append(m.accounts, account)
	m.active = account.ID
	if err := m.save(); err != nil {
		return nil, err
	}
	return &account, nil
}

// EnsureFresh returns a credential that stays valid for at least the
// given margin, transparently refreshing it when needed. Concurrent
// calls for the same account serialize so at most one refresh exchange
// is ever in flight per account. Returns ErrReauthRequired when the
// refresh token itself is gone or expired.
func (m *SessionManager) EnsureFresh(ctx context.Context, account *Account, margin time.Duration) (*credentials.Credential, error) {
	if account.Kind != KindMicrosoft {
		return nil, fmt.Errorf("%s accounts carry no credential", account.Kind)
	}
	if margin <= 0 {
		margin = DefaultFreshnessMargin
	}

	lock := m.refreshLock(account.ID)
	lock.Lock()
	defer lock.Unlock()

	cred, err := m.store.Load(account.ID)
	switch {
	case errors.Is(err, credentials.ErrNotFound):
		return nil, ErrReauthRequired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !cred.ExpiresWithin(margin) {
		return cred, nil
	}

	fresh, err := m.flow.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(account.ID, fresh); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return fresh, nil
}

// refreshLock returns the per-account refresh mutex. One lock per
// account keeps refreshes for different accounts fully independent.
func (m *SessionManager) refreshLock(id uuid.UUID) *sync.Mutex {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	lock, ok := m.refreshLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.refreshLocks[id] = lock
	}
	return lock
}

// Delete removes the account and purges its stored credential
func (m *SessionManager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}

	if m.accounts[idx].Kind == KindMicrosoft {
		if err := m.store.Delete(id); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	m.accounts = append(m.accounts[:idx], m.accounts[idx+1:]...)
	if m.active == id {
		m.active = uuid.Nil
	}
	return m.save()
}
