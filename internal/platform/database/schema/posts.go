// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package schema

// PostsTable represents the 'posts' table
type PostsTable struct {
	Table     string
	ID        string
	UserID    string
	Imgdata   string
	Body      string
	Mime      string
	CreatedAt string
}

// Posts is the schema definition for posts
var Posts = PostsTable{
	Table:     "posts",
	ID:        "id",
	UserID:    "user_id",
	Imgdata:   "imgdata",
	Body:      "body",
	Mime:      "mime",
	CreatedAt: "created_at",
}

// MetaColumns returns the columns safe to hydrate for feed scans.
// Imgdata is deliberately excluded: feed queries must never drag image
// blobs through the pool.
func (t PostsTable) MetaColumns() []string {
	return []string{t.ID, t.UserID, t.Body, t.Mime, t.CreatedAt}
}
