// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
Package feed implements post storage, comments, and feed assembly.

The assembler turns a newest-first slice of posts into at most 20 display
items, each carrying its author, its comment count, and a preview of its most
recent comments rendered oldest-first.

Architecture:

  - Service: Orchestrates assembly and the post/comment write paths.
  - PostRepository / CommentRepository: Abstracted Postgres access.
  - UserResolver: Author resolution, satisfied by the auth user repository.

Posts by banned authors are dropped during assembly, never at the SQL layer:
the ban filter is a display rule, and the rows must keep existing.
*/
package feed

import (
	"time"

	"github.com/minagawa/picboard/internal/users/auth"
)

// # Entities

// Post is a stored image post. Imgdata is hydrated only by the image
// endpoint; feed queries carry metadata exclusively.
type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Body      string    `json:"body"`
	Mime      string    `json:"mime"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a stored comment with its resolved author.
type Comment struct {
	ID        int64      `json:"id"`
	PostID    int64      `json:"post_id"`
	UserID    int64      `json:"-"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
	User      *auth.User `json:"user,omitempty"`
}

// Item is one assembled feed entry: a post enriched with everything the
// client needs to render it.
//
// # Ordering
//
// Comments are displayed oldest-first, but they are the post's most recent
// ones: the preview window selects by recency, then reverses for display.
type Item struct {
	Post
	User         *auth.User `json:"user"`
	CommentCount int        `json:"comment_count"`
	Comments     []Comment  `json:"comments"`
	CSRFToken    string     `json:"csrf_token,omitempty"`
}

// Profile is a user page: identity, assembled posts, and activity counts.
type Profile struct {
	User           *auth.User `json:"user"`
	Posts          []Item     `json:"posts"`
	PostCount      int        `json:"post_count"`
	CommentCount   int        `json:"comment_count"`
	CommentedCount int        `json:"commented_count"`
}

// # Accepted Upload Types

// allowedMimes maps the content types an upload may declare to the canonical
// mime stored with the post. Anything else is rejected before touching the DB.
var allowedMimes = map[string]string{
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
	"image/png":  "image/png",
	"image/gif":  "image/gif",
}

// CanonicalMime resolves a declared upload content type to its stored mime.
// The second return is false for types the board does not accept.
func CanonicalMime(declared string) (string, bool) {
	mime, ok := allowedMimes[declared]
	return mime, ok
}
