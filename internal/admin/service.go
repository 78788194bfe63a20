// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package admin

import (
	"context"
	"log/slog"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/platform/validate"
	"github.com/minagawa/picboard/internal/users/auth"
	"github.com/minagawa/picboard/pkg/pagination"
)

// # Service

// Service implements the moderation use cases.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repository: repository, logger: logger}
}

// # Environment Reset

/*
Initialize rolls the database back to its seeded fixture state.

Description: Deletes everything created after seeding (users above 1000,
posts above 10000, comments above 100000), clears every ban flag, then
re-bans the fixture's designated users (id divisible by 50). The sequence is
idempotent: running it twice lands on the same state.

It always reports success. Individual step failures are logged at error
level and skipped — a partially reset environment is more useful than a
refused one, and the caller (a deploy hook) cannot act on the error anyway.

Parameters:
  - ctx: context.Context
*/
func (service *Service) Initialize(ctx context.Context) {
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"delete_users_above_seed", func(ctx context.Context) error {
			return service.repository.DeleteUsersAbove(ctx, SeedMaxUserID)
		}},
		{"delete_posts_above_seed", func(ctx context.Context) error {
			return service.repository.DeletePostsAbove(ctx, SeedMaxPostID)
		}},
		{"delete_comments_above_seed", func(ctx context.Context) error {
			return service.repository.DeleteCommentsAbove(ctx, SeedMaxCommentID)
		}},
		{"reset_ban_flags", service.repository.ResetBanFlags},
		{"reban_fixture_users", func(ctx context.Context) error {
			return service.repository.BanEveryNth(ctx, BanModulus)
		}},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			service.logger.ErrorContext(ctx, "initialize_step_failed",
				slog.String("step", step.name),
				slog.String("error", err.Error()),
			)
		}
	}
}

// # Banning

/*
BanUsers soft-deletes the given accounts.

Parameters:
  - ctx: context.Context
  - actor: *auth.User (must hold admin authority)
  - userIDs: []int64

Returns:
  - error: Forbidden for non-admins, ValidationError for an empty id set,
    or storage errors
*/
func (service *Service) BanUsers(ctx context.Context, actor *auth.User, userIDs []int64) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Administrator authority required")
	}

	validator := &validate.Validator{}
	validator.Custom("user_ids", len(userIDs) == 0, "At least one user id is required")
	for _, id := range userIDs {
		if id <= 0 {
			validator.Custom("user_ids", true, "User ids must be positive integers")
			break
		}
	}

	if err := validator.Err(); err != nil {
		return err
	}

	return service.repository.BanUsers(ctx, userIDs)
}

/*
BannableUsers lists active, non-admin accounts for the moderation page.

Parameters:
  - ctx: context.Context
  - actor: *auth.User (must hold admin authority)
  - params: pagination.Params

Returns:
  - []auth.User: One page of candidates, newest-first
  - int: Total candidate count
  - error: Forbidden for non-admins, or storage errors
*/
func (service *Service) BannableUsers(ctx context.Context, actor *auth.User, params pagination.Params) ([]auth.User, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, apperr.Forbidden("Administrator authority required")
	}

	return service.repository.ListBannable(ctx, params.Limit, params.Offset())
}
