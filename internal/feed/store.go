// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package feed

import (
	"context"
	"time"

	"github.com/minagawa/picboard/internal/users/auth"
)

// # Repository Contracts

// PostRepository defines the data access contract for post rows.
//
// List methods return metadata only (no imgdata) ordered newest-first; the
// assembler applies the display cap, so list queries do not LIMIT to the page
// size themselves — a banned author's posts must be skippable without
// shortening the page.
type PostRepository interface {

	/*
		Create persists a new post with its image payload.

		Returns:
		  - int64: The new row id
		  - error: Storage errors
	*/
	Create(ctx context.Context, userID int64, mime string, imgdata []byte, body string) (int64, error)

	// ListLatest returns post metadata ordered newest-first.
	ListLatest(ctx context.Context) ([]Post, error)

	// ListBefore returns post metadata created at or before the given instant,
	// newest-first.
	ListBefore(ctx context.Context, maxCreatedAt time.Time) ([]Post, error)

	// ListByUser returns one user's post metadata, newest-first.
	ListByUser(ctx context.Context, userID int64) ([]Post, error)

	// FindByID returns one post's metadata, or apperr.NotFound.
	FindByID(ctx context.Context, id int64) (*Post, error)

	// IDsByUser returns the ids of every post the user has made.
	IDsByUser(ctx context.Context, userID int64) ([]int64, error)

	// CountByUser returns how many posts the user has made.
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// CommentRepository defines the data access contract for comment rows.
type CommentRepository interface {

	// Create persists a new comment and returns its id.
	Create(ctx context.Context, postID, userID int64, comment string) (int64, error)

	// CountByPost returns the total number of comments on a post.
	CountByPost(ctx context.Context, postID int64) (int, error)

	/*
		ListByPost returns a post's comments ordered created_at DESC.

		Parameters:
		  - ctx: context.Context
		  - postID: int64
		  - limit: int (0 means all comments)

		Returns:
		  - []Comment: Authors not yet resolved
		  - error: Storage errors
	*/
	ListByPost(ctx context.Context, postID int64, limit int) ([]Comment, error)

	// CountByUser returns how many comments the user has written.
	CountByUser(ctx context.Context, userID int64) (int, error)

	// CountOnPosts returns how many comments exist across the given posts.
	CountOnPosts(ctx context.Context, postIDs []int64) (int, error)
}

// UserResolver resolves authors during assembly. The auth package's user
// repository satisfies it.
type UserResolver interface {
	FindByID(ctx context.Context, id int64) (*auth.User, error)
	FindActiveByAccountName(ctx context.Context, accountName string) (*auth.User, error)
}
