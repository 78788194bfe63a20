// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package feed

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/users/auth"
)

// # In-Memory Fakes

type fakePostRepo struct {
	nextID int64
	posts  []Post
	images map[int64][]byte
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1, images: map[int64][]byte{}}
}

func (repo *fakePostRepo) add(userID int64, createdAt time.Time) Post {
	post := Post{
		ID:        repo.nextID,
		UserID:    userID,
		Body:      fmt.Sprintf("post %d", repo.nextID),
		Mime:      "image/png",
		CreatedAt: createdAt,
	}
	repo.nextID++
	repo.posts = append(repo.posts, post)
	return post
}

func (repo *fakePostRepo) newestFirst() []Post {
	sorted := append([]Post(nil), repo.posts...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

func (repo *fakePostRepo) Create(_ context.Context, userID int64, mime string, imgdata []byte, body string) (int64, error) {
	post := Post{ID: repo.nextID, UserID: userID, Body: body, Mime: mime, CreatedAt: time.Now()}
	repo.nextID++
	repo.posts = append(repo.posts, post)
	repo.images[post.ID] = imgdata
	return post.ID, nil
}

func (repo *fakePostRepo) ListLatest(context.Context) ([]Post, error) {
	return repo.newestFirst(), nil
}

func (repo *fakePostRepo) ListBefore(_ context.Context, maxCreatedAt time.Time) ([]Post, error) {
	var matched []Post
	for _, post := range repo.newestFirst() {
		if !post.CreatedAt.After(maxCreatedAt) {
			matched = append(matched, post)
		}
	}
	return matched, nil
}

func (repo *fakePostRepo) ListByUser(_ context.Context, userID int64) ([]Post, error) {
	var matched []Post
	for _, post := range repo.newestFirst() {
		if post.UserID == userID {
			matched = append(matched, post)
		}
	}
	return matched, nil
}

func (repo *fakePostRepo) FindByID(_ context.Context, id int64) (*Post, error) {
	for _, post := range repo.posts {
		if post.ID == id {
			copied := post
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Post")
}

func (repo *fakePostRepo) IDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	posts, _ := repo.ListByUser(ctx, userID)
	ids := make([]int64, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}
	return ids, nil
}

func (repo *fakePostRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	ids, _ := repo.IDsByUser(ctx, userID)
	return len(ids), nil
}

type fakeCommentRepo struct {
	nextID   int64
	comments []Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{nextID: 1}
}

func (repo *fakeCommentRepo) add(postID, userID int64, createdAt time.Time) Comment {
	comment := Comment{
		ID:        repo.nextID,
		PostID:    postID,
		UserID:    userID,
		Comment:   fmt.Sprintf("comment %d", repo.nextID),
		CreatedAt: createdAt,
	}
	repo.nextID++
	repo.comments = append(repo.comments, comment)
	return comment
}

func (repo *fakeCommentRepo) Create(_ context.Context, postID, userID int64, comment string) (int64, error) {
	created := repo.add(postID, userID, time.Now())
	repo.comments[len(repo.comments)-1].Comment = comment
	return created.ID, nil
}

func (repo *fakeCommentRepo) CountByPost(_ context.Context, postID int64) (int, error) {
	count := 0
	for _, comment := range repo.comments {
		if comment.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (repo *fakeCommentRepo) ListByPost(_ context.Context, postID int64, limit int) ([]Comment, error) {
	var matched []Comment
	for _, comment := range repo.comments {
		if comment.PostID == postID {
			matched = append(matched, comment)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (repo *fakeCommentRepo) CountByUser(_ context.Context, userID int64) (int, error) {
	count := 0
	for _, comment := range repo.comments {
		if comment.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (repo *fakeCommentRepo) CountOnPosts(_ context.Context, postIDs []int64) (int, error) {
	wanted := map[int64]bool{}
	for _, id := range postIDs {
		wanted[id] = true
	}
	count := 0
	for _, comment := range repo.comments {
		if wanted[comment.PostID] {
			count++
		}
	}
	return count, nil
}

type fakeUserResolver struct {
	byID   map[int64]*auth.User
	byName map[string]*auth.User
}

func newFakeUserResolver() *fakeUserResolver {
	return &fakeUserResolver{byID: map[int64]*auth.User{}, byName: map[string]*auth.User{}}
}

func (resolver *fakeUserResolver) add(id int64, accountName string, delFlg int) *auth.User {
	user := &auth.User{ID: id, AccountName: accountName, DelFlg: delFlg}
	resolver.byID[id] = user
	resolver.byName[accountName] = user
	return user
}

func (resolver *fakeUserResolver) FindByID(_ context.Context, id int64) (*auth.User, error) {
	user, ok := resolver.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (resolver *fakeUserResolver) FindActiveByAccountName(_ context.Context, accountName string) (*auth.User, error) {
	user, ok := resolver.byName[accountName]
	if !ok || user.DelFlg != 0 {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

// boardFixture bundles the fakes behind a ready-to-use service.
type boardFixture struct {
	posts    *fakePostRepo
	comments *fakeCommentRepo
	users    *fakeUserResolver
	service  *Service
}

func newBoardFixture() *boardFixture {
	fixture := &boardFixture{
		posts:    newFakePostRepo(),
		comments: newFakeCommentRepo(),
		users:    newFakeUserResolver(),
	}
	fixture.service = NewService(fixture.posts, fixture.comments, fixture.users)
	return fixture
}

// # Assembly

func TestAssembleCapsAtTwentyItems(t *testing.T) {
	fixture := newBoardFixture()
	fixture.users.add(1, "alice_01", 0)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		fixture.posts.add(1, base.Add(time.Duration(i)*time.Minute))
	}

	items, err := fixture.service.Latest(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, items, 20)

	// Newest-first input order is preserved in the output.
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].CreatedAt.After(items[i].CreatedAt))
	}
}

func TestAssembleCommentPreview(t *testing.T) {
	fixture := newBoardFixture()
	fixture.users.add(1, "alice_01", 0)
	fixture.users.add(2, "bob_02", 0)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	post := fixture.posts.add(1, base)

	// Five comments, one minute apart.
	var all []Comment
	for i := 0; i < 5; i++ {
		all = append(all, fixture.comments.add(post.ID, 2, base.Add(time.Duration(i+1)*time.Minute)))
	}

	items, err := fixture.service.Latest(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, 5, item.CommentCount)
	require.Len(t, item.Comments, 3)

	// The three most recent (3rd, 4th, 5th) displayed oldest-first.
	assert.Equal(t, all[2].ID, item.Comments[0].ID)
	assert.Equal(t, all[3].ID, item.Comments[1].ID)
	assert.Equal(t, all[4].ID, item.Comments[2].ID)

	// Every comment carries its resolved author.
	for _, comment := range item.Comments {
		require.NotNil(t, comment.User)
		assert.Equal(t, "bob_02", comment.User.AccountName)
	}
}

func TestAssembleFullThreadOnDemand(t *testing.T) {
	fixture := newBoardFixture()
	fixture.users.add(1, "alice_01", 0)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	post := fixture.posts.add(1, base)
	for i := 0; i < 5; i++ {
		fixture.comments.add(post.ID, 1, base.Add(time.Duration(i+1)*time.Minute))
	}

	item, err := fixture.service.GetPost(context.Background(), post.ID, "token")
	require.NoError(t, err)
	require.Len(t, item.Comments, 5)

	// Oldest-first across the whole thread.
	for i := 1; i < len(item.Comments); i++ {
		assert.True(t, item.Comments[i].CreatedAt.After(item.Comments[i-1].CreatedAt))
	}
}

func TestAssembleDropsBannedAuthorsAndBackfills(t *testing.T) {
	fixture := newBoardFixture()
	fixture.users.add(1, "alice_01", 0)
	fixture.users.add(2, "banned_2", 1)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// 22 active posts interleaved with 3 banned-authored ones near the top.
	for i := 0; i < 22; i++ {
		fixture.posts.add(1, base.Add(time.Duration(i)*time.Minute))
	}
	for i := 0; i < 3; i++ {
		fixture.posts.add(2, base.Add(time.Duration(30+i)*time.Minute))
	}

	items, err := fixture.service.Latest(context.Background(), "token")
	require.NoError(t, err)

	// Banned posts consumed no page slots: older active posts backfill.
	require.Len(t, items, 20)
	for _, item := range items {
		assert.Equal(t, "alice_01", item.User.AccountName)
	}
}

func TestAssembleBannedCommentAuthorStillShown(t *testing.T) {
	fixture := newBoardFixture()
	fixture.users.add(1, "alice_01", 0)
	fixture.users.add(2, "banned_2", 1)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	post := fixture.posts.add(1, base)
	fixture.comments.add(post.ID, 2, base.Add(time.Minute))

	// The ban hides a user's posts, not their comments on others' posts.
	items, err := fixture.service.Latest(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].Comments, 1)
	assert.Equal(t, "banned_2", items[0].Comments[0].User.AccountName)
}

func TestAssembleMissingAuthorIsIntegrityError(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("missing comment author", func(t *testing.T) {
		fixture := newBoardFixture()
		fixture.users.add(1, "alice_01", 0)
		post := fixture.posts.add(1, base)
		fixture.comments.add(post.ID, 999, base.Add(time.Minute))

		items, err := fixture.service.Latest(context.Background(), "token")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INTEGRITY_ERROR"))
		assert.Nil(t, items)
	})

	t.Run("missing post author", func(t *testing.T) {
		fixture := newBoardFixture()
		fixture.posts.add(999, base)

		items, err := fixture.service.Latest(context.Background(), "token")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "INTEGRITY_ERROR"))
		assert.Nil(t, items)
	})
}

func TestAssembleStampsCSRFTokenOnEveryItem(t *testing.T) {
	fixture := newBoardFixture()
	fixture.users.add(1, "alice_01", 0)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		fixture.posts.add(1, base.Add(time.Duration(i)*time.Minute))
	}

	items, err := fixture.service.Latest(context.Background(), "tok3n")
	require.NoError(t, err)
	for _, item := range items {
		assert.Equal(t, "tok3n", item.CSRFToken)
	}
}

// # Single Post & Cursor Pages

func TestGetPostBannedAuthorIsNotFound(t *testing.T) {
	fixture := newBoardFixture()
	fixture.users.add(2, "banned_2", 1)
	post := fixture.posts.add(2, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	_, err := fixture.service.GetPost(context.Background(), post.ID, "token")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

func TestBeforeFiltersByCursor(t *testing.T) {
	fixture := newBoardFixture()
	fixture.users.add(1, "alice_01", 0)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	old := fixture.posts.add(1, base)
	fixture.posts.add(1, base.Add(time.Hour))

	items, err := fixture.service.Before(context.Background(), base.Add(time.Minute), "token")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, old.ID, items[0].ID)
}

// # Profile

func TestProfileCounts(t *testing.T) {
	fixture := newBoardFixture()
	alice := fixture.users.add(1, "alice_01", 0)
	fixture.users.add(2, "bob_02", 0)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	first := fixture.posts.add(alice.ID, base)
	second := fixture.posts.add(alice.ID, base.Add(time.Minute))
	bobs := fixture.posts.add(2, base.Add(2*time.Minute))

	// Alice commented once on Bob's post; Bob commented twice on Alice's.
	fixture.comments.add(bobs.ID, alice.ID, base.Add(3*time.Minute))
	fixture.comments.add(first.ID, 2, base.Add(4*time.Minute))
	fixture.comments.add(second.ID, 2, base.Add(5*time.Minute))

	profile, err := fixture.service.Profile(context.Background(), "alice_01", "token")
	require.NoError(t, err)

	assert.Equal(t, 2, profile.PostCount)
	assert.Equal(t, 1, profile.CommentCount)
	assert.Equal(t, 2, profile.CommentedCount)
	require.Len(t, profile.Posts, 2)
	assert.Equal(t, second.ID, profile.Posts[0].ID)
}

func TestProfileBannedAccountIsNotFound(t *testing.T) {
	fixture := newBoardFixture()
	fixture.users.add(2, "banned_2", 1)

	_, err := fixture.service.Profile(context.Background(), "banned_2", "token")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

// # Write Paths

func TestCreatePostValidation(t *testing.T) {
	fixture := newBoardFixture()
	author := fixture.users.add(1, "alice_01", 0)

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{"empty payload", CreatePostInput{DeclaredMime: "image/png"}},
		{"unaccepted type", CreatePostInput{DeclaredMime: "application/pdf", Imgdata: []byte{1}}},
		{"no content type", CreatePostInput{Imgdata: []byte{1}}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := fixture.service.CreatePost(context.Background(), author, testCase.input)
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
		})
	}
}

func TestCreatePostCanonicalizesJpgMime(t *testing.T) {
	fixture := newBoardFixture()
	author := fixture.users.add(1, "alice_01", 0)

	id, err := fixture.service.CreatePost(context.Background(), author, CreatePostInput{
		DeclaredMime: "image/jpg",
		Imgdata:      []byte{0xFF, 0xD8},
		Body:         "caption",
	})
	require.NoError(t, err)

	post, err := fixture.posts.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", post.Mime)
}

func TestCreateComment(t *testing.T) {
	fixture := newBoardFixture()
	author := fixture.users.add(1, "alice_01", 0)
	post := fixture.posts.add(author.ID, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	id, err := fixture.service.CreateComment(context.Background(), author, post.ID, "nice shot")
	require.NoError(t, err)
	assert.Positive(t, id)

	t.Run("empty comment", func(t *testing.T) {
		_, err := fixture.service.CreateComment(context.Background(), author, post.ID, "")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
	})

	t.Run("non-positive post id", func(t *testing.T) {
		_, err := fixture.service.CreateComment(context.Background(), author, 0, "hello")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
	})

	t.Run("absent post", func(t *testing.T) {
		_, err := fixture.service.CreateComment(context.Background(), author, 424242, "hello")
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
	})
}
