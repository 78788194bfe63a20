// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

// Package schema centralizes table and column names for the board's three
// relations. Repositories reference these instead of repeating string
// literals, keeping renames greppable and queries auditable.
package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table       string
	ID          string
	AccountName string
	Passhash    string
	Authority   string
	DelFlg      string
	CreatedAt   string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:       "users",
	ID:          "id",
	AccountName: "account_name",
	Passhash:    "passhash",
	Authority:   "authority",
	DelFlg:      "del_flg",
	CreatedAt:   "created_at",
}

// Columns returns all standard column names
func (t UsersTable) Columns() []string {
	return []string{t.ID, t.AccountName, t.Passhash, t.Authority, t.DelFlg, t.CreatedAt}
}
