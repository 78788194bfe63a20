// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/platform/database/schema"
)

// # PostgreSQL Blob Store

// postgresStore implements [Store] using pgx. It is the only code path that
// reads posts.imgdata.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL backed image store.
func NewStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

/*
FindImage returns the stored mime and blob for a post.

Parameters:
  - ctx: context.Context
  - postID: int64

Returns:
  - string: Stored mime type
  - []byte: Exact stored payload
  - error: apperr.NotFound or storage errors
*/
func (store *postgresStore) FindImage(ctx context.Context, postID int64) (string, []byte, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.Posts.Mime, schema.Posts.Imgdata,
		schema.Posts.Table, schema.Posts.ID,
	)

	var mime string
	var data []byte
	err := store.pool.QueryRow(ctx, query, postID).Scan(&mime, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, apperr.NotFound("Image")
		}
		return "", nil, apperr.Internal(fmt.Errorf("postgres_image_store_find_failed: %w", err))
	}

	return mime, data, nil
}
