// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package auth

import (
	"context"
)

// # Repository Contracts

// UserRepository defines the data access contract for account rows.
type UserRepository interface {

	/*
		Create persists a new account and returns its generated id.

		Parameters:
		  - ctx: context.Context
		  - accountName: string (unique)
		  - passhash: string (salted digest, never plain text)

		Returns:
		  - int64: The new row id
		  - error: apperr.Conflict when the name is taken, or storage errors
	*/
	Create(ctx context.Context, accountName, passhash string) (int64, error)

	/*
		FindByID retrieves an account by primary key, banned or not.

		Parameters:
		  - ctx: context.Context
		  - id: int64

		Returns:
		  - *User: Hydrated account entity
		  - error: apperr.NotFound or storage errors
	*/
	FindByID(ctx context.Context, id int64) (*User, error)

	/*
		FindActiveByAccountName retrieves a non-banned account by its name.

		Description: The del_flg filter is part of the query so a banned
		account fails login the same way a missing one does.

		Parameters:
		  - ctx: context.Context
		  - accountName: string

		Returns:
		  - *User: Hydrated account entity
		  - error: apperr.NotFound or storage errors
	*/
	FindActiveByAccountName(ctx context.Context, accountName string) (*User, error)
}
