// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Board Rules: Feed page size, comment preview cap, CSRF token shape.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "picboard-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Uploads carry whole image payloads, so this is looser than a JSON-only API.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Board Rules

const (
	// PostsPerPage is the hard cap on assembled feed items per page.
	PostsPerPage = 20

	// CommentPreviewLimit is the number of most-recent comments shown per post
	// when the full comment list was not requested.
	CommentPreviewLimit = 3

	// MaxUploadSize bounds multipart image uploads (10 MiB).
	MaxUploadSize = 10 << 20
)

// # Sessions & CSRF

const (
	// SessionCookieName is the cookie that carries the opaque session id.
	SessionCookieName = "picboard_session"

	// SessionTTL is how long an untouched session survives in Redis.
	// Every session write refreshes it.
	SessionTTL = 7 * 24 * time.Hour

	// CSRFTokenLength is the character length of issued CSRF tokens.
	CSRFTokenLength = 32

	// FormFieldCSRFToken is the field state-changing submissions echo the token in.
	FormFieldCSRFToken = "csrf_token"
)

// # Upload Limits & Timestamps

const (
	// ISO8601Format is the timestamp layout accepted by the /posts pagination cursor.
	ISO8601Format = "2006-01-02T15:04:05-07:00"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Redis Prefixes (Session Taxonomy)

const (
	// RedisPrefixSession is the hash holding user_id and csrf_token per session.
	RedisPrefixSession = "session:"

	// RedisSuffixNotice is appended to the session key for the one-shot flash
	// notice; it lives in its own string key so GETDEL can consume it atomically.
	RedisSuffixNotice = ":notice"
)
