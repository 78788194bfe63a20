// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps the standard UUID library to specifically generate Version 7 values,
which are optimized for database performance and log ordering.

Advantages:

  - Sortable: Naturally ordered by creation time (millisecond precision).
  - Opaque: Carries no user-visible meaning — ideal for session ids.
  - Compact: 128-bit storage, compatible with standard 'uuid' types.

Picboard uses these for request correlation ids and opaque session ids.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUID: " + err.Error())
	}

	return id.String()
}
