package handlers_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	appauth "github.com/bcg0006/plockly-core/internal/application/auth"
	"github.com/bcg0006/plockly-core/internal/application/ports"
	"github.com/bcg0006/plockly-core/internal/domain"
	domerrors "github.com/bcg0006/plockly-core/internal/domain/errors"
	infraauth "github.com/bcg0006/plockly-core/internal/infrastructure/auth"
	httprouter "github.com/bcg0006/plockly-core/internal/infrastructure/http"
	"github.com/bcg0006/plockly-core/internal/infrastructure/http/handlers"
	"github.com/bcg0006/plockly-core/internal/infrastructure/http/middleware"
	"github.com/bcg0006/plockly-core/internal/infrastructure/security"
)

// --- in-memory fakes for the persistence ports ---

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]*domain.User)}
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[user.Email]; ok {
		return domerrors.ErrEmailTaken
	}
	clone := *user
	f.byEmail[user.Email] = &clone
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byEmail[email], nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID domain.UserID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, userID domain.UserID, update ports.ProfileUpdate) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, u := range f.byEmail {
		if u.ID != userID {
			continue
		}
		if update.Email != nil && *update.Email != u.Email {
			if _, taken := f.byEmail[*update.Email]; taken {
				return nil, domerrors.ErrEmailTaken
			}
			delete(f.byEmail, email)
			u.Email = *update.Email
			f.byEmail[u.Email] = u
		}
		if update.FirstName != nil {
			u.FirstName = *update.FirstName
		}
		if update.LastName != nil {
			u.LastName = *update.LastName
		}
		u.UpdatedAt = time.Now()
		return u, nil
	}
	return nil, domerrors.ErrUserNotFound
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byEmail)
}

type fakeItems struct {
	mu   sync.Mutex
	byID map[domain.ItemID]*domain.Item
}

func newFakeItems() *fakeItems {
	return &fakeItems{byID: make(map[domain.ItemID]*domain.Item)}
}

func (f *fakeItems) Create(_ context.Context, item *domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *item
	f.byID[item.ID] = &clone
	return nil
}

func (f *fakeItems) ListByOwner(_ context.Context, ownerID domain.UserID) ([]*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []*domain.Item
	for _, item := range f.byID {
		if item.OwnerID == ownerID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (f *fakeItems) GetByID(_ context.Context, ownerID domain.UserID, itemID domain.ItemID) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.byID[itemID]
	if !ok || item.OwnerID != ownerID {
		return nil, domerrors.ErrItemNotFound
	}
	return item, nil
}

func (f *fakeItems) Update(_ context.Context, ownerID domain.UserID, itemID domain.ItemID, update ports.ItemUpdate) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.byID[itemID]
	if !ok || item.OwnerID != ownerID {
		return nil, domerrors.ErrItemNotFound
	}
	if update.Title != nil {
		item.Title = *update.Title
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	return item, nil
}

func (f *fakeItems) Delete(_ context.Context, ownerID domain.UserID, itemID domain.ItemID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.byID[itemID]
	if !ok || item.OwnerID != ownerID {
		return domerrors.ErrItemNotFound
	}
	delete(f.byID, itemID)
	return nil
}

type fakeTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{revoked: make(map[string]time.Time)}
}

func (f *fakeTokenStore) Revoke(_ context.Context, tokenID, _ string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.revoked[tokenID]; !ok {
		f.revoked[tokenID] = expiresAt
	}
	return nil
}

func (f *fakeTokenStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[tokenID]
	return ok, nil
}

func (f *fakeTokenStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, exp := range f.revoked {
		if exp.Before(now) {
			delete(f.revoked, id)
			n++
		}
	}
	return n, nil
}

// --- test harness: fakes wired through the real router ---

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func testPrivateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}

type testEnv struct {
	users   *fakeUsers
	items   *fakeItems
	store   *fakeTokenStore
	issuer  *infraauth.TokenIssuer
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := newFakeUsers()
	items := newFakeItems()
	store := newFakeTokenStore()
	issuer := infraauth.NewTokenIssuer(testPrivateKey(t), "plockly", "plockly")
	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	policy := security.NewStrengthPolicy()
	log := zerolog.Nop()

	authHandler := handlers.NewAuthHandler(
		appauth.NewSignup(users, hasher, policy, issuer, 900, 3600),
		appauth.NewLogin(users, hasher, issuer, 900, 3600),
		appauth.NewRefresh(issuer, store, 900, 3600),
		appauth.NewLogout(issuer, store),
		users, log)
	itemsHandler := handlers.NewItemsHandler(items, log)

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:  authHandler,
		ItemsHandler: itemsHandler,
		RequireJWT:   middleware.NewAuthValidator(issuer).Handler,
		Log:          log,
	})
	return &testEnv{users: users, items: items, store: store, issuer: issuer, handler: router}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// signup registers a user and returns the response body.
func (e *testEnv) signup(t *testing.T, email, password string) map[string]interface{} {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":            email,
		"password":         password,
		"password_confirm": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "signup body: %s", rec.Body.String())
	return decodeBody(t, rec)
}

func tokensFrom(t *testing.T, body map[string]interface{}) (access, refresh string) {
	t.Helper()
	tokens, ok := body["tokens"].(map[string]interface{})
	require.True(t, ok, "response has no tokens: %v", body)
	access, _ = tokens["access"].(string)
	refresh, _ = tokens["refresh"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	return access, refresh
}
