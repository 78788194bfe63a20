// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] values via [dberr.Wrap] so that nothing
// above this layer depends on pgx.

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new account row.

Description: Uniqueness of account_name is enforced by the table's UNIQUE
constraint; concurrent registrations racing on the same name are arbitrated
by Postgres and surface here as a Conflict.

Parameters:
  - ctx: context.Context
  - accountName: string
  - passhash: string

Returns:
  - int64: The generated row id
  - error: apperr.Conflict or storage errors
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, accountName, passhash string) (int64, error) {
	const query = `
		INSERT INTO users (account_name, passhash)
		VALUES ($1, $2)
		RETURNING id`

	var id int64
	if err := repository.pool.QueryRow(ctx, query, accountName, passhash).Scan(&id); err != nil {
		return 0, dberr.Wrap(fmt.Errorf("postgres_user_repo_create_failed: %w", err), MessageAccountTaken)
	}

	return id, nil
}

/*
FindByID retrieves an account by primary key.

Description: Banned accounts resolve too — feed assembly needs the DelFlg of
every author to decide whether their posts are visible.

Parameters:
  - ctx: context.Context
  - id: int64

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or storage errors
*/
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	const query = `
		SELECT id, account_name, passhash, authority, del_flg, created_at
		FROM users
		WHERE id = $1`

	user := &User{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.AccountName,
		&user.Passhash,
		&user.Authority,
		&user.DelFlg,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, apperr.Internal(fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err))
	}

	return user, nil
}

/*
FindActiveByAccountName retrieves a non-banned account by its name.

Parameters:
  - ctx: context.Context
  - accountName: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound (also for banned accounts) or storage errors
*/
func (repository *PostgresUserRepository) FindActiveByAccountName(ctx context.Context, accountName string) (*User, error) {
	const query = `
		SELECT id, account_name, passhash, authority, del_flg, created_at
		FROM users
		WHERE account_name = $1 AND del_flg = 0`

	user := &User{}
	err := repository.pool.QueryRow(ctx, query, accountName).Scan(
		&user.ID,
		&user.AccountName,
		&user.Passhash,
		&user.Authority,
		&user.DelFlg,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, apperr.Internal(fmt.Errorf("postgres_user_repo_find_by_account_name_failed: %w", err))
	}

	return user, nil
}
