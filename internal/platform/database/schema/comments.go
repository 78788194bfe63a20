// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package schema

// CommentsTable represents the 'comments' table
type CommentsTable struct {
	Table     string
	ID        string
	PostID    string
	UserID    string
	Comment   string
	CreatedAt string
}

// Comments is the schema definition for comments
var Comments = CommentsTable{
	Table:     "comments",
	ID:        "id",
	PostID:    "post_id",
	UserID:    "user_id",
	Comment:   "comment",
	CreatedAt: "created_at",
}

// Columns returns all standard column names
func (t CommentsTable) Columns() []string {
	return []string{t.ID, t.PostID, t.UserID, t.Comment, t.CreatedAt}
}
