// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/users/auth"
	"github.com/minagawa/picboard/pkg/pagination"
)

// fakeRepository records the bulk statements the service issues.
type fakeRepository struct {
	calls      []string
	banned     []int64
	failSteps  map[string]error
	candidates []auth.User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{failSteps: map[string]error{}}
}

func (repo *fakeRepository) record(name string) error {
	repo.calls = append(repo.calls, name)
	return repo.failSteps[name]
}

func (repo *fakeRepository) DeleteUsersAbove(_ context.Context, maxID int64) error {
	assertThreshold(maxID, SeedMaxUserID)
	return repo.record("delete_users")
}

func (repo *fakeRepository) DeletePostsAbove(_ context.Context, maxID int64) error {
	assertThreshold(maxID, SeedMaxPostID)
	return repo.record("delete_posts")
}

func (repo *fakeRepository) DeleteCommentsAbove(_ context.Context, maxID int64) error {
	assertThreshold(maxID, SeedMaxCommentID)
	return repo.record("delete_comments")
}

func (repo *fakeRepository) ResetBanFlags(context.Context) error {
	return repo.record("reset_flags")
}

func (repo *fakeRepository) BanEveryNth(_ context.Context, modulus int64) error {
	assertThreshold(modulus, BanModulus)
	return repo.record("reban")
}

func (repo *fakeRepository) BanUsers(_ context.Context, userIDs []int64) error {
	repo.banned = append(repo.banned, userIDs...)
	return repo.record("ban_users")
}

func (repo *fakeRepository) ListBannable(_ context.Context, limit, offset int) ([]auth.User, int, error) {
	_ = repo.record("list_bannable")
	end := offset + limit
	if end > len(repo.candidates) {
		end = len(repo.candidates)
	}
	if offset > len(repo.candidates) {
		offset = len(repo.candidates)
	}
	return repo.candidates[offset:end], len(repo.candidates), nil
}

func assertThreshold(got, want int64) {
	if got != want {
		panic("unexpected threshold in bulk statement")
	}
}

// stateRepository applies the bulk statements to in-memory tables so tests can
// observe the end state rather than the call sequence. Users map id -> del_flg.
type stateRepository struct {
	users    map[int64]int
	posts    map[int64]struct{}
	comments map[int64]struct{}
}

func newStateRepository() *stateRepository {
	return &stateRepository{
		users:    map[int64]int{},
		posts:    map[int64]struct{}{},
		comments: map[int64]struct{}{},
	}
}

func (repo *stateRepository) DeleteUsersAbove(_ context.Context, maxID int64) error {
	for id := range repo.users {
		if id > maxID {
			delete(repo.users, id)
		}
	}
	return nil
}

func (repo *stateRepository) DeletePostsAbove(_ context.Context, maxID int64) error {
	for id := range repo.posts {
		if id > maxID {
			delete(repo.posts, id)
		}
	}
	return nil
}

func (repo *stateRepository) DeleteCommentsAbove(_ context.Context, maxID int64) error {
	for id := range repo.comments {
		if id > maxID {
			delete(repo.comments, id)
		}
	}
	return nil
}

func (repo *stateRepository) ResetBanFlags(context.Context) error {
	for id := range repo.users {
		repo.users[id] = 0
	}
	return nil
}

func (repo *stateRepository) BanEveryNth(_ context.Context, modulus int64) error {
	for id := range repo.users {
		if id%modulus == 0 {
			repo.users[id] = 1
		}
	}
	return nil
}

func (repo *stateRepository) BanUsers(_ context.Context, userIDs []int64) error {
	for _, id := range userIDs {
		repo.users[id] = 1
	}
	return nil
}

func (repo *stateRepository) ListBannable(context.Context, int, int) ([]auth.User, int, error) {
	return nil, 0, nil
}

func admin() *auth.User  { return &auth.User{ID: 1, Authority: auth.AuthorityAdmin} }
func member() *auth.User { return &auth.User{ID: 2, Authority: auth.AuthorityMember} }

// # Initialize

func TestInitializeRunsEveryStepInOrder(t *testing.T) {
	repo := newFakeRepository()
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	service.Initialize(context.Background())

	assert.Equal(t, []string{
		"delete_users",
		"delete_posts",
		"delete_comments",
		"reset_flags",
		"reban",
	}, repo.calls)
}

func TestInitializeContinuesPastFailures(t *testing.T) {
	repo := newFakeRepository()
	repo.failSteps["delete_posts"] = errors.New("table locked")
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// No error escapes; the remaining steps still run.
	service.Initialize(context.Background())
	assert.Contains(t, repo.calls, "reset_flags")
	assert.Contains(t, repo.calls, "reban")
}

func TestInitializeIsIdempotent(t *testing.T) {
	repo := newStateRepository()

	// Seeded rows in assorted ban states, plus post-seed traffic above every
	// threshold.
	repo.users = map[int64]int{3: 0, 50: 1, 100: 1, 150: 0, 777: 1, 999: 0, 1001: 0, 1100: 1}
	repo.posts = map[int64]struct{}{9999: {}, 10000: {}, 10001: {}}
	repo.comments = map[int64]struct{}{99999: {}, 100000: {}, 100001: {}}

	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	service.Initialize(context.Background())

	// Rows above the seed thresholds are gone; every surviving ban flag is
	// cleared and only the fixture's designated users (id % 50 == 0) are
	// re-banned.
	assert.Equal(t, map[int64]int{3: 0, 50: 1, 100: 1, 150: 1, 777: 0, 999: 0}, repo.users)
	assert.Equal(t, map[int64]struct{}{9999: {}, 10000: {}}, repo.posts)
	assert.Equal(t, map[int64]struct{}{99999: {}, 100000: {}}, repo.comments)

	usersAfterFirst := maps.Clone(repo.users)
	postsAfterFirst := maps.Clone(repo.posts)
	commentsAfterFirst := maps.Clone(repo.comments)

	// A second run lands on the identical state.
	service.Initialize(context.Background())
	assert.Equal(t, usersAfterFirst, repo.users)
	assert.Equal(t, postsAfterFirst, repo.posts)
	assert.Equal(t, commentsAfterFirst, repo.comments)
}

// # Banning

func TestBanUsersRequiresAdminAuthority(t *testing.T) {
	repo := newFakeRepository()
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := service.BanUsers(context.Background(), member(), []int64{42})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))
	assert.Empty(t, repo.banned)
}

func TestBanUsersValidatesIDSet(t *testing.T) {
	repo := newFakeRepository()
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := service.BanUsers(context.Background(), admin(), nil)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))

	err = service.BanUsers(context.Background(), admin(), []int64{3, -1})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}

func TestBanUsersForwardsIDs(t *testing.T) {
	repo := newFakeRepository()
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, service.BanUsers(context.Background(), admin(), []int64{3, 7, 11}))
	assert.Equal(t, []int64{3, 7, 11}, repo.banned)
}

// # Candidate Listing

func TestBannableUsersPaginates(t *testing.T) {
	repo := newFakeRepository()
	for i := int64(1); i <= 5; i++ {
		repo.candidates = append(repo.candidates, auth.User{ID: i})
	}
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	users, total, err := service.BannableUsers(context.Background(), admin(), pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, users, 2)
	assert.Equal(t, int64(3), users[0].ID)

	_, _, err = service.BannableUsers(context.Background(), member(), pagination.Params{Page: 1, Limit: 2})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))
}
