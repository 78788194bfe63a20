// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
Package admin implements moderation and the environment reset.

It owns user banning (soft delete via del_flg) and the Initialize operation
that rolls the database back to its seeded fixture state.

Architecture:

  - Service: Orchestrates banning rules and the reset sequence.
  - Repository: Abstracted Postgres access for the bulk statements.
*/
package admin

import (
	"context"

	"github.com/minagawa/picboard/internal/users/auth"
)

// # Seed Boundaries

// Rows with ids above these thresholds were created after seeding and are
// swept away by a reset; rows at or below them are the permanent fixture.
const (
	SeedMaxUserID    = 1000
	SeedMaxPostID    = 10000
	SeedMaxCommentID = 100000
)

// BanModulus selects the seed users re-banned after every reset: those whose
// id divides evenly by it.
const BanModulus = 50

// # Repository Contract

// Repository defines the bulk data access the moderation layer needs.
type Repository interface {

	// DeleteUsersAbove removes user rows with id greater than maxID.
	DeleteUsersAbove(ctx context.Context, maxID int64) error

	// DeletePostsAbove removes post rows with id greater than maxID.
	DeletePostsAbove(ctx context.Context, maxID int64) error

	// DeleteCommentsAbove removes comment rows with id greater than maxID.
	DeleteCommentsAbove(ctx context.Context, maxID int64) error

	// ResetBanFlags clears del_flg on every user.
	ResetBanFlags(ctx context.Context) error

	// BanEveryNth sets del_flg=1 on users whose id divides evenly by modulus.
	BanEveryNth(ctx context.Context, modulus int64) error

	// BanUsers sets del_flg=1 on the given user ids.
	BanUsers(ctx context.Context, userIDs []int64) error

	/*
		ListBannable returns active, non-admin users ordered newest-first,
		plus the total count for pagination.

		Returns:
		  - []auth.User: One page of candidates
		  - int: Total candidate count
		  - error: Storage errors
	*/
	ListBannable(ctx context.Context, limit, offset int) ([]auth.User, int, error)
}
