// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/platform/sec"
	"github.com/minagawa/picboard/internal/session"
)

// # In-Memory Fakes

type memoryUserRepo struct {
	nextID int64
	byID   map[int64]*User
	byName map[string]*User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		nextID: 1,
		byID:   map[int64]*User{},
		byName: map[string]*User{},
	}
}

func (repo *memoryUserRepo) Create(_ context.Context, accountName, passhash string) (int64, error) {
	if _, exists := repo.byName[accountName]; exists {
		return 0, apperr.Conflict(MessageAccountTaken)
	}

	user := &User{
		ID:          repo.nextID,
		AccountName: accountName,
		Passhash:    passhash,
		CreatedAt:   time.Now(),
	}
	repo.nextID++
	repo.byID[user.ID] = user
	repo.byName[user.AccountName] = user
	return user.ID, nil
}

func (repo *memoryUserRepo) FindByID(_ context.Context, id int64) (*User, error) {
	user, ok := repo.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (repo *memoryUserRepo) FindActiveByAccountName(_ context.Context, accountName string) (*User, error) {
	user, ok := repo.byName[accountName]
	if !ok || user.DelFlg != 0 {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

type memorySessionStore struct {
	values  map[string]map[string]string
	notices map[string]string
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{
		values:  map[string]map[string]string{},
		notices: map[string]string{},
	}
}

func (store *memorySessionStore) Get(_ context.Context, sessionID, key string) (string, error) {
	return store.values[sessionID][key], nil
}

func (store *memorySessionStore) Set(_ context.Context, sessionID, key, value string) error {
	if store.values[sessionID] == nil {
		store.values[sessionID] = map[string]string{}
	}
	store.values[sessionID][key] = value
	return nil
}

func (store *memorySessionStore) Delete(_ context.Context, sessionID, key string) error {
	delete(store.values[sessionID], key)
	return nil
}

func (store *memorySessionStore) SetNotice(_ context.Context, sessionID, message string) error {
	store.notices[sessionID] = message
	return nil
}

func (store *memorySessionStore) ConsumeNotice(_ context.Context, sessionID string) (string, error) {
	message := store.notices[sessionID]
	delete(store.notices, sessionID)
	return message, nil
}

func (store *memorySessionStore) Destroy(_ context.Context, sessionID string) error {
	delete(store.values, sessionID)
	delete(store.notices, sessionID)
	return nil
}

// brokenSessionStore fails every read, simulating a Redis outage.
type brokenSessionStore struct {
	memorySessionStore
}

func (store *brokenSessionStore) Get(context.Context, string, string) (string, error) {
	return "", apperr.Session(errors.New("connection refused"))
}

func newTestService(repo UserRepository, sessions session.Store) *Service {
	return NewService(repo, sessions, sec.NewHasher(sec.SHA512Digester{}), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Registration

func TestRegisterBindsIdentityAndIssuesCSRFToken(t *testing.T) {
	ctx := context.Background()
	sessions := newMemorySessionStore()
	service := newTestService(newMemoryUserRepo(), sessions)

	user, err := service.Register(ctx, "sess-1", RegisterInput{AccountName: "alice_01", Password: "secret9"})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice_01", user.AccountName)
	assert.Equal(t, AuthorityMember, user.Authority)

	// Identity bound to the session.
	boundID, err := sessions.Get(ctx, "sess-1", session.KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, "1", boundID)

	// CSRF token issued with the fixed shape.
	token, err := sessions.Get(ctx, "sess-1", session.KeyCSRFToken)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{32}$`), token)

	// Passhash is a salted digest, never the raw password.
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{128}$`), user.Passhash)
	assert.NotContains(t, user.Passhash, "secret9")
}

func TestRegisterRejectsMalformedCredentials(t *testing.T) {
	tests := []struct {
		name        string
		accountName string
		password    string
	}{
		{"account name too short", "ab", "secret9"},
		{"account name with symbols", "alice!", "secret9"},
		{"password too short", "alice_01", "pw1"},
		{"password with symbols", "alice_01", "secret#9"},
		{"empty account name", "", "secret9"},
		{"empty password", "alice_01", ""},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			sessions := newMemorySessionStore()
			service := newTestService(newMemoryUserRepo(), sessions)

			_, err := service.Register(ctx, "sess-1", RegisterInput{
				AccountName: testCase.accountName,
				Password:    testCase.password,
			})

			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))

			// The failure is mirrored into the flash slot, same as the
			// duplicate-account and failed-login paths.
			notice, err := sessions.ConsumeNotice(ctx, "sess-1")
			require.NoError(t, err)
			assert.Equal(t, MessageInvalidCredentialFormat, notice)
		})
	}
}

func TestRegisterDuplicateAccountNameConflicts(t *testing.T) {
	ctx := context.Background()
	sessions := newMemorySessionStore()
	service := newTestService(newMemoryUserRepo(), sessions)

	_, err := service.Register(ctx, "sess-1", RegisterInput{AccountName: "alice_01", Password: "secret9"})
	require.NoError(t, err)

	_, err = service.Register(ctx, "sess-2", RegisterInput{AccountName: "alice_01", Password: "other99"})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	// The failure is mirrored into the loser's flash slot.
	notice, err := sessions.ConsumeNotice(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, MessageAccountTaken, notice)
}

func TestRegisterWhileAuthenticatedIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	service := newTestService(repo, newMemorySessionStore())

	first, err := service.Register(ctx, "sess-1", RegisterInput{AccountName: "alice_01", Password: "secret9"})
	require.NoError(t, err)

	// Same session submits again with a different name: nothing is created.
	second, err := service.Register(ctx, "sess-1", RegisterInput{AccountName: "bob_02", Password: "secret9"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.byID, 1)
}

// # Login

func TestLoginSucceedsWithCorrectCredentials(t *testing.T) {
	ctx := context.Background()
	sessions := newMemorySessionStore()
	service := newTestService(newMemoryUserRepo(), sessions)

	_, err := service.Register(ctx, "sess-1", RegisterInput{AccountName: "alice_01", Password: "secret9"})
	require.NoError(t, err)

	user, err := service.Login(ctx, "sess-2", LoginInput{AccountName: "alice_01", Password: "secret9"})
	require.NoError(t, err)
	assert.Equal(t, "alice_01", user.AccountName)

	boundID, err := sessions.Get(ctx, "sess-2", session.KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, "1", boundID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	sessions := newMemorySessionStore()
	service := newTestService(repo, sessions)

	_, err := service.Register(ctx, "sess-1", RegisterInput{AccountName: "alice_01", Password: "secret9"})
	require.NoError(t, err)

	// Ban a second account directly.
	id, err := repo.Create(ctx, "banned_1", "x")
	require.NoError(t, err)
	repo.byID[id].DelFlg = 1

	tests := []struct {
		name  string
		input LoginInput
	}{
		{"unknown account", LoginInput{AccountName: "nobody_9", Password: "secret9"}},
		{"wrong password", LoginInput{AccountName: "alice_01", Password: "wrong99"}},
		{"banned account", LoginInput{AccountName: "banned_1", Password: "secret9"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Login(ctx, "sess-x", testCase.input)
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
			assert.Equal(t, MessageLoginFailed, err.Error())
		})
	}
}

func TestLoginRotatesCSRFToken(t *testing.T) {
	ctx := context.Background()
	sessions := newMemorySessionStore()
	service := newTestService(newMemoryUserRepo(), sessions)

	_, err := service.Register(ctx, "sess-1", RegisterInput{AccountName: "alice_01", Password: "secret9"})
	require.NoError(t, err)

	// Anonymous session renders a form and holds a pre-auth token.
	before, err := service.CSRFToken(ctx, "sess-2")
	require.NoError(t, err)

	_, err = service.Login(ctx, "sess-2", LoginInput{AccountName: "alice_01", Password: "secret9"})
	require.NoError(t, err)

	after, err := service.CSRFToken(ctx, "sess-2")
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

// # Identity Resolution

func TestCurrentUserAnonymousWithoutBinding(t *testing.T) {
	service := newTestService(newMemoryUserRepo(), newMemorySessionStore())

	user, err := service.CurrentUser(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, user)

	// Cookieless request: no session id at all.
	user, err = service.CurrentUser(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentUserDegradesToAnonymousOnStoreFailure(t *testing.T) {
	service := newTestService(newMemoryUserRepo(), &brokenSessionStore{})

	user, err := service.CurrentUser(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentUserClearsStaleBinding(t *testing.T) {
	ctx := context.Background()
	sessions := newMemorySessionStore()
	service := newTestService(newMemoryUserRepo(), sessions)

	// Binding points at a user row that no longer exists.
	require.NoError(t, sessions.Set(ctx, "sess-1", session.KeyUserID, "42"))

	user, err := service.CurrentUser(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, user)

	bound, err := sessions.Get(ctx, "sess-1", session.KeyUserID)
	require.NoError(t, err)
	assert.Empty(t, bound)
}

// # Logout

func TestLogoutRemovesOnlyTheIdentity(t *testing.T) {
	ctx := context.Background()
	sessions := newMemorySessionStore()
	service := newTestService(newMemoryUserRepo(), sessions)

	_, err := service.Register(ctx, "sess-1", RegisterInput{AccountName: "alice_01", Password: "secret9"})
	require.NoError(t, err)

	tokenBefore, err := sessions.Get(ctx, "sess-1", session.KeyCSRFToken)
	require.NoError(t, err)
	require.NotEmpty(t, tokenBefore)

	require.NoError(t, service.Logout(ctx, "sess-1"))

	user, err := service.CurrentUser(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, user)

	// CSRF token survives logout.
	tokenAfter, err := sessions.Get(ctx, "sess-1", session.KeyCSRFToken)
	require.NoError(t, err)
	assert.Equal(t, tokenBefore, tokenAfter)

	// Logging out again is a successful no-op.
	require.NoError(t, service.Logout(ctx, "sess-1"))
}

// # CSRF Verification

func TestVerifyCSRF(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMemoryUserRepo(), newMemorySessionStore())

	token, err := service.CSRFToken(ctx, "sess-1")
	require.NoError(t, err)

	assert.NoError(t, service.VerifyCSRF(ctx, "sess-1", token))

	err = service.VerifyCSRF(ctx, "sess-1", "forged-token")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))

	// A session that never received a token has nothing to legitimately echo.
	err = service.VerifyCSRF(ctx, "sess-fresh", "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))
}

// # Flash Notices

func TestConsumeNoticeIsDeleteOnRead(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newMemoryUserRepo(), newMemorySessionStore())

	require.NoError(t, service.SetNotice(ctx, "sess-1", "uploaded"))

	first, err := service.ConsumeNotice(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "uploaded", first)

	second, err := service.ConsumeNotice(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, second)
}
