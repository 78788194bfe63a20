// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
Package auth implements the authenticated-access layer of the board.

It owns the User entity, credential verification against the legacy salted
digest scheme, the session binding (who this visitor is), and CSRF token
issuance and verification.

Architecture:

  - Service: Orchestrates registration, login, logout, and identity resolution.
  - UserRepository: Abstracted Postgres access for account rows.
  - session.Store: Holds the user binding and CSRF token per opaque session id.

The package never stores or compares plain-text passwords; all credential
material flows through [sec.Hasher].
*/
package auth

import (
	"regexp"
	"time"
)

// # Authority Levels

const (
	// AuthorityMember is a regular account.
	AuthorityMember = 0

	// AuthorityAdmin grants access to the moderation endpoints.
	AuthorityAdmin = 1
)

// # Validation Rules

var (
	// accountNamePattern: word characters only, at least 3 of them. Account
	// names are immutable (they seed the password salt), so the rule is strict.
	accountNamePattern = regexp.MustCompile(`^[0-9A-Za-z_]{3,}$`)

	// passwordPattern: word characters only, at least 6 of them.
	passwordPattern = regexp.MustCompile(`^[0-9A-Za-z_]{6,}$`)
)

// # Entity

// User represents an account on the board.
//
// # Soft Deletion
//
// Banned accounts are never removed; DelFlg is set to 1 and every read path
// (login, feed assembly) filters them out. Their rows must survive so that
// historical posts and comments keep resolving.
type User struct {
	ID          int64     `json:"id"`
	AccountName string    `json:"account_name"`
	Passhash    string    `json:"-"`
	Authority   int       `json:"authority"`
	DelFlg      int       `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsAdmin reports whether the account may use moderation endpoints.
// Any non-zero authority qualifies.
func (user *User) IsAdmin() bool {
	return user != nil && user.Authority != AuthorityMember
}

// IsBanned reports whether the account has been soft-deleted.
func (user *User) IsBanned() bool {
	return user != nil && user.DelFlg != 0
}

// ValidAccountName reports whether name satisfies the account-name rule.
func ValidAccountName(name string) bool {
	return accountNamePattern.MatchString(name)
}

// ValidPassword reports whether password satisfies the password rule.
func ValidPassword(password string) bool {
	return passwordPattern.MatchString(password)
}
