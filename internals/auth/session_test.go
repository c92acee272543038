package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fastmc/fastmc/internals/credentials"
	"github.com/google/uuid"
)

type fakeResolver struct {
	profile Profile
	calls   int32
}

func (r *fakeResolver) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	atomic.AddInt32(&r.calls, 1)
	profile := r.profile
	return &profile, nil
}

func testStore(t *testing.T, dir string) *credentials.Store {
	t.Helper()
	store := credentials.New(dir)
	store.DisableKeyRing()
	return store
}

func testManager(t *testing.T, flow *DeviceAuthFlow, resolver ProfileResolver) *SessionManager {
	t.Helper()
	dir := t.TempDir()
	manager, err := NewSessionManager(testStore(t, dir), flow, resolver, dir)
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	return manager
}

func TestSessionManager_CreateOffline(t *testing.T) {
	manager := testManager(t, nil, nil)

	account, err := manager.CreateOffline("steve")
	if err != nil {
		t.Fatalf("CreateOffline() error = %v", err)
	}
	if account.Kind != KindOffline {
		t.Errorf("Kind = %s, want offline", account.Kind)
	}
	if account.ProfileID != OfflineUUID("steve").String() {
		t.Errorf("ProfileID = %s, want the derived offline uuid", account.ProfileID)
	}

	active, ok := manager.Active()
	if !ok || active.ID != account.ID {
		t.Errorf("new offline account is not active")
	}

	// same name again reactivates instead of duplicating
	other, err := manager.CreateOffline("alex")
	if err != nil {
		t.Fatalf("CreateOffline() error = %v", err)
	}
	again, err := manager.CreateOffline("steve")
	if err != nil {
		t.Fatalf("CreateOffline() error = %v", err)
	}
	if again.ID != account.ID {
		t.Errorf("duplicate name created a second account")
	}
	if len(manager.Accounts()) != 2 {
		t.Errorf("accounts = %d, want 2", len(manager.Accounts()))
	}
	active, _ = manager.Active()
	if active.ID != account.ID {
		t.Errorf("active = %s, want steve back active (was %s)", active.Name, other.Name)
	}
}

func TestSessionManager_Persistence(t *testing.T) {
	dir := t.TempDir()
	store := testStore(t, dir)

	manager, err := NewSessionManager(store, nil, nil, dir)
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	account, err := manager.CreateOffline("steve")
	if err != nil {
		t.Fatalf("CreateOffline() error = %v", err)
	}

	// a second manager over the same dir sees the same state
	reloaded, err := NewSessionManager(store, nil, nil, dir)
	if err != nil {
		t.Fatalf("NewSessionManager() reload error = %v", err)
	}
	active, ok := reloaded.Active()
	if !ok {
		t.Fatal("reloaded manager lost the active account")
	}
	if active.ID != account.ID || active.Name != "steve" {
		t.Errorf("reloaded active = %+v", active)
	}
}

func TestSessionManager_CheckLogin(t *testing.T) {
	provider := newFakeProvider(t)
	provider.tokenResponses = []map[string]interface{}{successToken}

	now := time.Now()
	flow := provider.flow(&now)
	resolver := &fakeResolver{profile: Profile{ID: "11112222333344445555666677778888", Name: "Steve"}}
	manager := testManager(t, flow, resolver)

	session, err := manager.LoginMicrosoft(context.Background())
	if err != nil {
		t.Fatalf("LoginMicrosoft() error = %v", err)
	}

	outcome, err := manager.CheckLogin(context.Background(), session)
	if err != nil {
		t.Fatalf("CheckLogin() error = %v", err)
	}
	if outcome.State != StateAuthorized {
		t.Fatalf("State = %v, want authorized", outcome.State)
	}

	active, ok := manager.Active()
	if !ok {
		t.Fatal("no active account after login")
	}
	if active.Kind != KindMicrosoft || active.Name != "Steve" {
		t.Errorf("active = %+v", active)
	}
	if active.ProfileID != resolver.profile.ID {
		t.Errorf("ProfileID = %s", active.ProfileID)
	}

	// the credential landed in the store
	cred, err := manager.EnsureFresh(context.Background(), active, time.Second)
	if err != nil {
		t.Fatalf("EnsureFresh() error = %v", err)
	}
	if cred.AccessToken != "access123" {
		t.Errorf("AccessToken = %s", cred.AccessToken)
	}

	// checking an already authorized session again must not upsert twice
	if _, err := manager.CheckLogin(context.Background(), session); err != nil {
		t.Fatalf("CheckLogin() repeat error = %v", err)
	}
	if got := atomic.LoadInt32(&resolver.calls); got != 1 {
		t.Errorf("profile lookups = %d, want 1", got)
	}
	if len(manager.Accounts()) != 1 {
		t.Errorf("accounts = %d, want 1", len(manager.Accounts()))
	}
}

func TestSessionManager_EnsureFreshSkipsValidToken(t *testing.T) {
	provider := newFakeProvider(t)
	now := time.Now()
	flow := provider.flow(&now)
	manager := testManager(t, flow, nil)

	account := Account{ID: uuid.New(), Name: "Steve", Kind: KindMicrosoft, ProfileID: "p"}
	cred := &credentials.Credential{}
	cred.AccessToken = "stillgood"
	cred.RefreshToken = "refresh"
	cred.Expiry = time.Now().Add(time.Hour)
	if err := manager.store.Save(account.ID, cred); err != nil {
		t.Fatal(err)
	}

	got, err := manager.EnsureFresh(context.Background(), &account, DefaultFreshnessMargin)
	if err != nil {
		t.Fatalf("EnsureFresh() error = %v", err)
	}
	if got.AccessToken != "stillgood" {
		t.Errorf("AccessToken = %s, want the stored token back", got.AccessToken)
	}
	if provider.polls() != 0 {
		t.Errorf("valid token still triggered a refresh")
	}
}

func TestSessionManager_EnsureFreshRefreshesOnce(t *testing.T) {
	provider := newFakeProvider(t)
	provider.tokenResponses = []map[string]interface{}{
		{"access_token": "fresh", "refresh_token": "refresh2", "expires_in": 3600},
	}

	now := time.Now()
	flow := provider.flow(&now)
	manager := testManager(t, flow, nil)

	account := Account{ID: uuid.New(), Name: "Steve", Kind: KindMicrosoft, ProfileID: "p"}
	stale := &credentials.Credential{}
	stale.AccessToken = "stale"
	stale.RefreshToken = "refresh1"
	stale.Expiry = time.Now().Add(30 * time.Second)
	if err := manager.store.Save(account.ID, stale); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]*credentials.Credential, 10)
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = manager.EnsureFresh(context.Background(), &account, DefaultFreshnessMargin)
		}(i)
	}
	wg.Wait()

	if provider.polls() != 1 {
		t.Errorf("refresh exchanges = %d, want exactly 1", provider.polls())
	}
	for i := 0; i < 10; i++ {
		if errs[i] != nil {
			t.Fatalf("EnsureFresh() [%d] error = %v", i, errs[i])
		}
		if results[i].AccessToken != "fresh" {
			t.Errorf("EnsureFresh() [%d] AccessToken = %s", i, results[i].AccessToken)
		}
	}

	// the refreshed credential was persisted
	stored, err := manager.store.Load(account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.RefreshToken != "refresh2" {
		t.Errorf("stored RefreshToken = %s, want the rotated one", stored.RefreshToken)
	}
}

func TestSessionManager_EnsureFreshReauth(t *testing.T) {
	provider := newFakeProvider(t)
	provider.tokenResponses = []map[string]interface{}{
		{"error": "invalid_grant"},
	}

	now := time.Now()
	flow := provider.flow(&now)
	manager := testManager(t, flow, nil)

	account := Account{ID: uuid.New(), Name: "Steve", Kind: KindMicrosoft, ProfileID: "p"}
	stale := &credentials.Credential{}
	stale.RefreshToken = "dead"
	stale.Expiry = time.Now().Add(-time.Minute)
	if err := manager.store.Save(account.ID, stale); err != nil {
		t.Fatal(err)
	}

	_, err := manager.EnsureFresh(context.Background(), &account, DefaultFreshnessMargin)
	if !errors.Is(err, ErrReauthRequired) {
		t.Errorf("EnsureFresh() error = %v, want ErrReauthRequired", err)
	}

	// no credential at all is the same answer
	gone := Account{ID: uuid.New(), Name: "Alex", Kind: KindMicrosoft, ProfileID: "q"}
	_, err = manager.EnsureFresh(context.Background(), &gone, DefaultFreshnessMargin)
	if !errors.Is(err, ErrReauthRequired) {
		t.Errorf("EnsureFresh() without credential error = %v, want ErrReauthRequired", err)
	}
}

func TestSessionManager_EnsureFreshOffline(t *testing.T) {
	manager := testManager(t, nil, nil)
	account, err := manager.CreateOffline("steve")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := manager.EnsureFresh(context.Background(), account, 0); err == nil {
		t.Error("EnsureFresh() on an offline account should fail")
	}
}

func TestSessionManager_Delete(t *testing.T) {
	manager := testManager(t, nil, nil)

	account := Account{ID: uuid.New(), Name: "Steve", Kind: KindMicrosoft, ProfileID: "p"}
	cred := &credentials.Credential{}
	cred.AccessToken = "tok"
	if err := manager.store.Save(account.ID, cred); err != nil {
		t.Fatal(err)
	}
	manager.mu.Lock()
	manager.accounts = append(manager.accounts, account)
	manager.active = account.ID
	manager.mu.Unlock()

	if err := manager.Delete(account.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(manager.Accounts()) != 0 {
		t.Errorf("account list not empty after delete")
	}
	if _, ok := manager.Active(); ok {
		t.Errorf("deleted account is still active")
	}
	if _, err := manager.store.Load(account.ID); !errors.Is(err, credentials.ErrNotFound) {
		t.Errorf("credential survived the delete: %v", err)
	}

	if err := manager.Delete(account.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() of unknown account = %v, want ErrNotFound", err)
	}
}

func TestSessionManager_SetActive(t *testing.T) {
	manager := testManager(t, nil, nil)
	a, _ := manager.CreateOffline("steve")
	b, _ := manager.CreateOffline("alex")

	if err := manager.SetActive(a.ID); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	active, _ := manager.Active()
	if active.ID != a.ID {
		t.Errorf("active = %s, want %s", active.Name, a.Name)
	}
	_ = b

	if err := manager.SetActive(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive() unknown id = %v, want ErrNotFound", err)
	}
}

func TestOfflineUUID(t *testing.T) {
	id := OfflineUUID("Player")
	if id == uuid.Nil {
		t.Fatal("OfflineUUID returned nil uuid")
	}
	if id.Version() != 3 {
		t.Errorf("uuid version = %d, want 3", id.Version())
	}
	if id != OfflineUUID("Player") {
		t.Error("OfflineUUID is not deterministic")
	}
	if id == OfflineUUID("player") {
		t.Error("OfflineUUID ignores case")
	}
}
