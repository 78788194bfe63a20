// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/platform/database/schema"
	"github.com/minagawa/picboard/internal/users/auth"
)

// # PostgreSQL Repository

// postgresRepository implements [Repository] using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed moderation store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

/*
DeleteUsersAbove removes user rows created after seeding.
*/
func (repository *postgresRepository) DeleteUsersAbove(ctx context.Context, maxID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s > $1`, schema.Users.Table, schema.Users.ID)
	if _, err := repository.pool.Exec(ctx, query, maxID); err != nil {
		return apperr.Internal(fmt.Errorf("postgres_admin_repo_delete_users_failed: %w", err))
	}
	return nil
}

/*
DeletePostsAbove removes post rows created after seeding.
*/
func (repository *postgresRepository) DeletePostsAbove(ctx context.Context, maxID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s > $1`, schema.Posts.Table, schema.Posts.ID)
	if _, err := repository.pool.Exec(ctx, query, maxID); err != nil {
		return apperr.Internal(fmt.Errorf("postgres_admin_repo_delete_posts_failed: %w", err))
	}
	return nil
}

/*
DeleteCommentsAbove removes comment rows created after seeding.
*/
func (repository *postgresRepository) DeleteCommentsAbove(ctx context.Context, maxID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s > $1`, schema.Comments.Table, schema.Comments.ID)
	if _, err := repository.pool.Exec(ctx, query, maxID); err != nil {
		return apperr.Internal(fmt.Errorf("postgres_admin_repo_delete_comments_failed: %w", err))
	}
	return nil
}

/*
ResetBanFlags clears del_flg on every user row.
*/
func (repository *postgresRepository) ResetBanFlags(ctx context.Context) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = 0`, schema.Users.Table, schema.Users.DelFlg)
	if _, err := repository.pool.Exec(ctx, query); err != nil {
		return apperr.Internal(fmt.Errorf("postgres_admin_repo_reset_flags_failed: %w", err))
	}
	return nil
}

/*
BanEveryNth re-bans the fixture's designated banned users.
*/
func (repository *postgresRepository) BanEveryNth(ctx context.Context, modulus int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = 1 WHERE %s %% $1 = 0`,
		schema.Users.Table, schema.Users.DelFlg, schema.Users.ID)
	if _, err := repository.pool.Exec(ctx, query, modulus); err != nil {
		return apperr.Internal(fmt.Errorf("postgres_admin_repo_ban_every_nth_failed: %w", err))
	}
	return nil
}

/*
BanUsers sets del_flg=1 on the given user ids in one statement.
*/
func (repository *postgresRepository) BanUsers(ctx context.Context, userIDs []int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = 1 WHERE %s = ANY($1)`,
		schema.Users.Table, schema.Users.DelFlg, schema.Users.ID)
	if _, err := repository.pool.Exec(ctx, query, userIDs); err != nil {
		return apperr.Internal(fmt.Errorf("postgres_admin_repo_ban_users_failed: %w", err))
	}
	return nil
}

/*
ListBannable returns active, non-admin users ordered newest-first.

Description: Uses COUNT(*) OVER() so the page and its total arrive in one
round-trip.
*/
func (repository *postgresRepository) ListBannable(ctx context.Context, limit, offset int) ([]auth.User, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE %s = 0 AND %s = 0
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2`,
		schema.Users.ID, schema.Users.AccountName, schema.Users.Authority,
		schema.Users.DelFlg, schema.Users.CreatedAt,
		schema.Users.Table,
		schema.Users.Authority, schema.Users.DelFlg,
		schema.Users.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Errorf("postgres_admin_repo_list_bannable_failed: %w", err))
	}
	defer rows.Close()

	var users []auth.User
	total := 0
	for rows.Next() {
		var user auth.User
		if err := rows.Scan(&user.ID, &user.AccountName, &user.Authority, &user.DelFlg, &user.CreatedAt, &total); err != nil {
			return nil, 0, apperr.Internal(fmt.Errorf("postgres_admin_repo_scan_failed: %w", err))
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal(fmt.Errorf("postgres_admin_repo_rows_failed: %w", err))
	}

	return users, total, nil
}
