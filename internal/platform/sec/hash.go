// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
Package sec provides cryptographic primitives for credentials and tokens.

It isolates security-sensitive code (password digests, CSRF token generation)
from the domain logic. The password scheme is the board's legacy salted-digest
composition; it must stay byte-compatible with the hashes already stored, so
it is deliberately NOT a modern KDF.

Architecture:

  - Digester: Pluggable one-way hash provider (production: in-process SHA-512).
  - Hasher: Derives the salt and the salted passhash from a Digester.
  - Tokens: Fixed-alphabet random strings from crypto/rand.
*/
package sec

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/minagawa/picboard/internal/platform/apperr"
)

// # Digest Provider

// Digester is the one-way hash oracle behind the password pipeline.
//
// A production implementation must return a 512-bit digest as lowercase hex.
// The interface exists so tests can inject failing or malformed oracles, and
// so an external provider (the legacy system shelled out to a command-line
// hash utility) could be slotted back in without touching the auth service.
type Digester interface {
	// Digest returns the fixed-length hex fingerprint of src.
	Digest(src string) (string, error)
}

// SHA512Digester computes digests in-process with crypto/sha512.
//
// Its lowercase hex output is identical to the legacy external tool's, so all
// previously stored passhashes verify unchanged.
type SHA512Digester struct{}

// Digest implements [Digester].
func (SHA512Digester) Digest(src string) (string, error) {
	sum := sha512.Sum512([]byte(src))
	return hex.EncodeToString(sum[:]), nil
}

// hexDigestPattern matches a well-formed 512-bit hex digest.
var hexDigestPattern = regexp.MustCompile(`^[0-9a-f]{128}$`)

// # Password Hashing

// Hasher derives deterministic, salted password digests.
//
// The salt is the digest of the account name, which is why account names are
// immutable: renaming an account would invalidate its stored passhash.
type Hasher struct {
	digester Digester
}

// NewHasher constructs a [Hasher] around the given digest provider.
func NewHasher(digester Digester) *Hasher {
	return &Hasher{digester: digester}
}

/*
Salt returns the per-account salt: digest(accountName).

Parameters:
  - accountName: string

Returns:
  - string: 128-char lowercase hex digest
  - error: apperr.Hashing if the oracle fails or returns malformed output
*/
func (hasher *Hasher) Salt(accountName string) (string, error) {
	return hasher.digest(accountName)
}

/*
Passhash computes the stored credential digest.

Description: digest(password + ":" + digest(accountName)). Deterministic:
the same inputs always produce the same output, and changing either input
changes the output.

Parameters:
  - accountName: string
  - password: string

Returns:
  - string: 128-char lowercase hex digest
  - error: apperr.Hashing on oracle failure
*/
func (hasher *Hasher) Passhash(accountName, password string) (string, error) {
	salt, err := hasher.Salt(accountName)
	if err != nil {
		return "", err
	}
	return hasher.digest(password + ":" + salt)
}

// digest invokes the oracle and validates its output shape.
func (hasher *Hasher) digest(src string) (string, error) {
	out, err := hasher.digester.Digest(src)
	if err != nil {
		return "", apperr.Hashing(fmt.Errorf("sec: digest oracle failed: %w", err))
	}

	// A truncated or non-hex digest would silently corrupt every stored
	// credential derived from it; reject it here.
	if !hexDigestPattern.MatchString(out) {
		return "", apperr.Hashing(fmt.Errorf("sec: digest oracle returned malformed output (%d bytes)", len(out)))
	}

	return out, nil
}
