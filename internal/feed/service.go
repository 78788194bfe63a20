// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/platform/constants"
	"github.com/minagawa/picboard/internal/platform/validate"
	"github.com/minagawa/picboard/internal/users/auth"
)

// # Service

// Service implements feed assembly and the post/comment write paths.
type Service struct {
	postRepository    PostRepository
	commentRepository CommentRepository
	userResolver      UserResolver
}

// NewService constructs a new [Service] with its dependencies.
func NewService(posts PostRepository, comments CommentRepository, users UserResolver) *Service {
	return &Service{
		postRepository:    posts,
		commentRepository: comments,
		userResolver:      users,
	}
}

// # Assembly

/*
Assemble turns a newest-first slice of posts into display items.

Description: Per post, in input order: count comments; fetch the comments
(most recent first, capped at the preview limit unless allComments); resolve
every comment author; reverse the fetched comments so the selected
most-recent subset reads oldest-first; resolve the post author and drop the
whole post if that author is banned; stop once the page cap is reached.

A user id that resolves to no row is data corruption: assembly aborts with an
INTEGRITY_ERROR and discards everything built so far. It never retries and
never papers over the hole with a placeholder author.

Parameters:
  - ctx: context.Context
  - posts: []Post (already ordered newest-first by the caller)
  - csrfToken: string (stamped on every item for the comment forms)
  - allComments: bool (full thread instead of the 3-comment preview)

Returns:
  - []Item: At most 20 assembled items
  - error: apperr.Integrity or storage errors
*/
func (service *Service) Assemble(ctx context.Context, posts []Post, csrfToken string, allComments bool) ([]Item, error) {
	items := make([]Item, 0, min(len(posts), constants.PostsPerPage))

	// One author cache per assembly pass: the same few users appear over and
	// over in a page of comments.
	authors := map[int64]*auth.User{}

	for _, post := range posts {

		// 1. Total comment count, independent of the preview window.
		commentCount, err := service.commentRepository.CountByPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}

		// 2. Fetch the most recent comments (DESC), full thread on demand.
		limit := constants.CommentPreviewLimit
		if allComments {
			limit = 0
		}
		comments, err := service.commentRepository.ListByPost(ctx, post.ID, limit)
		if err != nil {
			return nil, err
		}

		// 3. Resolve every comment author.
		for index := range comments {
			author, err := service.resolveAuthor(ctx, authors, comments[index].UserID)
			if err != nil {
				return nil, err
			}
			comments[index].User = author
		}

		// 4. Reverse: the selected most-recent subset displays oldest-first.
		for left, right := 0, len(comments)-1; left < right; left, right = left+1, right-1 {
			comments[left], comments[right] = comments[right], comments[left]
		}

		// 5. Resolve the post author; a banned author hides the whole post.
		author, err := service.resolveAuthor(ctx, authors, post.UserID)
		if err != nil {
			return nil, err
		}
		if author.IsBanned() {
			continue
		}

		items = append(items, Item{
			Post:         post,
			User:         author,
			CommentCount: commentCount,
			Comments:     comments,
			CSRFToken:    csrfToken,
		})

		// 6. Page cap reached: later posts are not even inspected.
		if len(items) >= constants.PostsPerPage {
			break
		}
	}

	return items, nil
}

// resolveAuthor loads a user through the per-pass cache. A missing row is an
// integrity failure, not a NotFound: the id came from our own tables.
func (service *Service) resolveAuthor(ctx context.Context, cache map[int64]*auth.User, userID int64) (*auth.User, error) {
	if author, ok := cache[userID]; ok {
		return author, nil
	}

	author, err := service.userResolver.FindByID(ctx, userID)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return nil, apperr.Integrity(fmt.Errorf("feed: author %d referenced but not stored", userID))
		}
		return nil, err
	}

	cache[userID] = author
	return author, nil
}

// # Read Paths

/*
Latest assembles the front-page feed: the newest posts, previewed comments.
*/
func (service *Service) Latest(ctx context.Context, csrfToken string) ([]Item, error) {
	posts, err := service.postRepository.ListLatest(ctx)
	if err != nil {
		return nil, err
	}
	return service.Assemble(ctx, posts, csrfToken, false)
}

/*
Before assembles a feed page of posts created at or before maxCreatedAt.
*/
func (service *Service) Before(ctx context.Context, maxCreatedAt time.Time, csrfToken string) ([]Item, error) {
	posts, err := service.postRepository.ListBefore(ctx, maxCreatedAt)
	if err != nil {
		return nil, err
	}
	return service.Assemble(ctx, posts, csrfToken, false)
}

/*
GetPost assembles a single post with its full comment thread.

Returns:
  - *Item: The assembled post
  - error: apperr.NotFound when the post is absent or its author is banned
*/
func (service *Service) GetPost(ctx context.Context, postID int64, csrfToken string) (*Item, error) {
	post, err := service.postRepository.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	items, err := service.Assemble(ctx, []Post{*post}, csrfToken, true)
	if err != nil {
		return nil, err
	}

	// Assembly dropped it: the author is banned, so the post does not exist
	// as far as clients are concerned.
	if len(items) == 0 {
		return nil, apperr.NotFound("Post")
	}

	return &items[0], nil
}

/*
Profile assembles a user page: posts plus activity counts.

Parameters:
  - ctx: context.Context
  - accountName: string (without the "@" route prefix)
  - csrfToken: string

Returns:
  - *Profile: Identity, assembled posts, counts
  - error: apperr.NotFound for missing or banned accounts
*/
func (service *Service) Profile(ctx context.Context, accountName, csrfToken string) (*Profile, error) {
	user, err := service.userResolver.FindActiveByAccountName(ctx, accountName)
	if err != nil {
		return nil, err
	}

	posts, err := service.postRepository.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	items, err := service.Assemble(ctx, posts, csrfToken, false)
	if err != nil {
		return nil, err
	}

	postCount, err := service.postRepository.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	commentCount, err := service.commentRepository.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// The id list is only needed for the comments-received count.
	postIDs, err := service.postRepository.IDsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	commentedCount, err := service.commentRepository.CountOnPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:           user,
		Posts:          items,
		PostCount:      postCount,
		CommentCount:   commentCount,
		CommentedCount: commentedCount,
	}, nil
}

// # Write Paths

// CreatePostInput holds an upload: declared content type, payload, caption.
type CreatePostInput struct {
	DeclaredMime string
	Imgdata      []byte
	Body         string
}

/*
CreatePost validates and persists an image upload.

Parameters:
  - ctx: context.Context
  - author: *auth.User (already authenticated by the caller)
  - input: CreatePostInput

Returns:
  - int64: The new post id
  - error: Validation or storage errors
*/
func (service *Service) CreatePost(ctx context.Context, author *auth.User, input CreatePostInput) (int64, error) {
	mime, accepted := CanonicalMime(input.DeclaredMime)

	validator := &validate.Validator{}
	validator.Custom("file", len(input.Imgdata) == 0, "An image file is required").
		Custom("file", !accepted, "Only jpg, png, and gif images are accepted").
		Custom("file", len(input.Imgdata) > constants.MaxUploadSize, "File size is too large")

	if err := validator.Err(); err != nil {
		return 0, err
	}

	return service.postRepository.Create(ctx, author.ID, mime, input.Imgdata, input.Body)
}

/*
CreateComment validates and persists a comment on a post.

Parameters:
  - ctx: context.Context
  - author: *auth.User
  - postID: int64
  - comment: string

Returns:
  - int64: The new comment id
  - error: Validation, NotFound (absent post), or storage errors
*/
func (service *Service) CreateComment(ctx context.Context, author *auth.User, postID int64, comment string) (int64, error) {
	validator := &validate.Validator{}
	validator.Custom("post_id", postID <= 0, "post_id must be a positive integer").
		Required("comment", comment).
		MaxLen("comment", comment, 4096)

	if err := validator.Err(); err != nil {
		return 0, err
	}

	// The referenced post must exist; comments on ghosts would corrupt the
	// counts every feed page recomputes.
	if _, err := service.postRepository.FindByID(ctx, postID); err != nil {
		return 0, err
	}

	return service.commentRepository.Create(ctx, postID, author.ID, comment)
}
