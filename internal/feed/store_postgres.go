// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
PostgreSQL implementation of the feed repositories.

Queries are built from [schema] definitions rather than string literals so
column renames stay greppable. List queries select metadata columns only —
imgdata never travels with a feed scan.
*/

package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/platform/database/schema"
)

// # Post Repository

// postRepository implements [PostRepository] using pgx.
type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository constructs a PostgreSQL backed post store.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

// postMetaColumns is the SELECT list shared by every feed scan.
func postMetaColumns() string {
	return strings.Join(schema.Posts.MetaColumns(), ", ")
}

// scanPosts drains a metadata result set into post entities.
func scanPosts(rows pgx.Rows) ([]Post, error) {
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		if err := rows.Scan(&post.ID, &post.UserID, &post.Body, &post.Mime, &post.CreatedAt); err != nil {
			return nil, apperr.Internal(fmt.Errorf("postgres_post_repo_scan_failed: %w", err))
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("postgres_post_repo_rows_failed: %w", err))
	}

	return posts, nil
}

/*
Create persists a new post with its image payload.

Parameters:
  - ctx: context.Context
  - userID: int64
  - mime: string (canonical, pre-validated by the service)
  - imgdata: []byte
  - body: string

Returns:
  - int64: The generated row id
  - error: Storage errors
*/
func (repository *postRepository) Create(ctx context.Context, userID int64, mime string, imgdata []byte, body string) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`,
		schema.Posts.Table,
		schema.Posts.UserID, schema.Posts.Mime, schema.Posts.Imgdata, schema.Posts.Body,
		schema.Posts.ID,
	)

	var id int64
	if err := repository.pool.QueryRow(ctx, query, userID, mime, imgdata, body).Scan(&id); err != nil {
		return 0, apperr.Internal(fmt.Errorf("postgres_post_repo_create_failed: %w", err))
	}

	return id, nil
}

/*
ListLatest returns post metadata ordered newest-first.

Description: No LIMIT here: the assembler caps at the page size after
dropping banned authors, so trimming in SQL would shorten pages whenever a
banned author appears near the top.
*/
func (repository *postRepository) ListLatest(ctx context.Context) ([]Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s DESC`,
		postMetaColumns(), schema.Posts.Table, schema.Posts.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("postgres_post_repo_list_latest_failed: %w", err))
	}

	return scanPosts(rows)
}

/*
ListBefore returns post metadata created at or before maxCreatedAt, newest-first.
*/
func (repository *postRepository) ListBefore(ctx context.Context, maxCreatedAt time.Time) ([]Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s <= $1
		ORDER BY %s DESC`,
		postMetaColumns(), schema.Posts.Table, schema.Posts.CreatedAt, schema.Posts.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query, maxCreatedAt)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("postgres_post_repo_list_before_failed: %w", err))
	}

	return scanPosts(rows)
}

/*
ListByUser returns one user's post metadata, newest-first.
*/
func (repository *postRepository) ListByUser(ctx context.Context, userID int64) ([]Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC`,
		postMetaColumns(), schema.Posts.Table, schema.Posts.UserID, schema.Posts.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("postgres_post_repo_list_by_user_failed: %w", err))
	}

	return scanPosts(rows)
}

/*
FindByID returns one post's metadata.

Returns:
  - *Post: Hydrated metadata (no imgdata)
  - error: apperr.NotFound or storage errors
*/
func (repository *postRepository) FindByID(ctx context.Context, id int64) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		postMetaColumns(), schema.Posts.Table, schema.Posts.ID,
	)

	post := &Post{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.UserID, &post.Body, &post.Mime, &post.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Post")
		}
		return nil, apperr.Internal(fmt.Errorf("postgres_post_repo_find_by_id_failed: %w", err))
	}

	return post, nil
}

/*
IDsByUser returns the ids of every post the user has made.
*/
func (repository *postRepository) IDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1`,
		schema.Posts.ID, schema.Posts.Table, schema.Posts.UserID,
	)

	rows, err := repository.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("postgres_post_repo_ids_by_user_failed: %w", err))
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internal(fmt.Errorf("postgres_post_repo_ids_scan_failed: %w", err))
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("postgres_post_repo_ids_rows_failed: %w", err))
	}

	return ids, nil
}

/*
CountByUser returns how many posts the user has made.
*/
func (repository *postRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.Posts.Table, schema.Posts.UserID,
	)

	var count int
	if err := repository.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, apperr.Internal(fmt.Errorf("postgres_post_repo_count_by_user_failed: %w", err))
	}

	return count, nil
}

// # Comment Repository

// commentRepository implements [CommentRepository] using pgx.
type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository constructs a PostgreSQL backed comment store.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

/*
Create persists a new comment and returns its id.
*/
func (repository *commentRepository) Create(ctx context.Context, postID, userID int64, comment string) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s`,
		schema.Comments.Table,
		schema.Comments.PostID, schema.Comments.UserID, schema.Comments.Comment,
		schema.Comments.ID,
	)

	var id int64
	if err := repository.pool.QueryRow(ctx, query, postID, userID, comment).Scan(&id); err != nil {
		return 0, apperr.Internal(fmt.Errorf("postgres_comment_repo_create_failed: %w", err))
	}

	return id, nil
}

/*
CountByPost returns the total number of comments on a post.
*/
func (repository *commentRepository) CountByPost(ctx context.Context, postID int64) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.Comments.Table, schema.Comments.PostID,
	)

	var count int
	if err := repository.pool.QueryRow(ctx, query, postID).Scan(&count); err != nil {
		return 0, apperr.Internal(fmt.Errorf("postgres_comment_repo_count_by_post_failed: %w", err))
	}

	return count, nil
}

/*
ListByPost returns a post's comments ordered created_at DESC.

Parameters:
  - ctx: context.Context
  - postID: int64
  - limit: int (0 means no LIMIT clause)
*/
func (repository *commentRepository) ListByPost(ctx context.Context, postID int64, limit int) ([]Comment, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC`,
		schema.Comments.ID, schema.Comments.PostID, schema.Comments.UserID,
		schema.Comments.Comment, schema.Comments.CreatedAt,
		schema.Comments.Table, schema.Comments.PostID, schema.Comments.CreatedAt,
	))

	args := []any{postID}
	if limit > 0 {
		queryBuilder.WriteString(" LIMIT $2")
		args = append(args, limit)
	}

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("postgres_comment_repo_list_by_post_failed: %w", err))
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var comment Comment
		if err := rows.Scan(&comment.ID, &comment.PostID, &comment.UserID, &comment.Comment, &comment.CreatedAt); err != nil {
			return nil, apperr.Internal(fmt.Errorf("postgres_comment_repo_scan_failed: %w", err))
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("postgres_comment_repo_rows_failed: %w", err))
	}

	return comments, nil
}

/*
CountByUser returns how many comments the user has written.
*/
func (repository *commentRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.Comments.Table, schema.Comments.UserID,
	)

	var count int
	if err := repository.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, apperr.Internal(fmt.Errorf("postgres_comment_repo_count_by_user_failed: %w", err))
	}

	return count, nil
}

/*
CountOnPosts returns how many comments exist across the given posts.

Description: Used for the "comments received" figure on profile pages. An
empty id set short-circuits to zero without touching the database.
*/
func (repository *commentRepository) CountOnPosts(ctx context.Context, postIDs []int64) (int, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE %s = ANY($1)`,
		schema.Comments.Table, schema.Comments.PostID,
	)

	var count int
	if err := repository.pool.QueryRow(ctx, query, postIDs).Scan(&count); err != nil {
		return 0, apperr.Internal(fmt.Errorf("postgres_comment_repo_count_on_posts_failed: %w", err))
	}

	return count, nil
}
