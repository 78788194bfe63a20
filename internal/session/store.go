// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
Package session defines the narrow key-value contract for per-visitor state.

A session is an opaque id (minted by the transport layer, carried in a cookie)
mapped to a handful of string keys: the identity binding, the CSRF token, and
an at-most-one flash notice with delete-on-read semantics.

Architecture:

  - Store: The contract every session backend must honor.
  - RedisStore: The production implementation (see store_redis.go).
  - Expiry: Sessions die by TTL or explicit logout; the core never iterates them.

All durable state lives behind this contract or in Postgres — no component
keeps per-visitor state in process memory.
*/
package session

import (
	"context"
	"time"
)

// # Session Keys

const (
	// KeyUserID binds the session to an authenticated user. Absent for
	// anonymous visitors.
	KeyUserID = "user_id"

	// KeyCSRFToken holds the one token valid for this session. Login and
	// registration replace it.
	KeyCSRFToken = "csrf_token"
)

// # Contract

// Store defines the data access contract for per-visitor session state.
//
// Implementations must treat the session id as opaque and must never expose
// one session's keys to another.
type Store interface {

	/*
		Get returns the value stored under key for the given session.

		Parameters:
		  - ctx: context.Context
		  - sessionID: string (opaque id)
		  - key: string

		Returns:
		  - string: Stored value, or "" if the key is absent
		  - error: Backend I/O failures (apperr.Session)
	*/
	Get(ctx context.Context, sessionID, key string) (string, error)

	/*
		Set stores value under key and refreshes the session's TTL.

		Parameters:
		  - ctx: context.Context
		  - sessionID: string
		  - key: string
		  - value: string

		Returns:
		  - error: Backend I/O failures (apperr.Session)
	*/
	Set(ctx context.Context, sessionID, key, value string) error

	/*
		Delete removes a single key from the session. Removing an absent key
		is not an error (logout is idempotent).

		Parameters:
		  - ctx: context.Context
		  - sessionID: string
		  - key: string

		Returns:
		  - error: Backend I/O failures (apperr.Session)
	*/
	Delete(ctx context.Context, sessionID, key string) error

	/*
		SetNotice stores the pending flash message, overwriting any unread one.

		Parameters:
		  - ctx: context.Context
		  - sessionID: string
		  - message: string

		Returns:
		  - error: Backend I/O failures (apperr.Session)
	*/
	SetNotice(ctx context.Context, sessionID, message string) error

	/*
		ConsumeNotice reads and atomically deletes the pending flash message.

		Parameters:
		  - ctx: context.Context
		  - sessionID: string

		Returns:
		  - string: The message, or "" if none was pending
		  - error: Backend I/O failures (apperr.Session)
	*/
	ConsumeNotice(ctx context.Context, sessionID string) (string, error)

	/*
		Destroy removes the whole session (all keys and the notice).

		Parameters:
		  - ctx: context.Context
		  - sessionID: string

		Returns:
		  - error: Backend I/O failures (apperr.Session)
	*/
	Destroy(ctx context.Context, sessionID string) error
}

// TTLProvider is implemented by stores whose sessions expire; exposed for
// operational introspection in health/debug endpoints.
type TTLProvider interface {
	TTL(ctx context.Context, sessionID string) (time.Duration, error)
}
