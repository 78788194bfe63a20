// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package auth

// # Field Identifiers

const (
	FieldAccountName = "account_name"
	FieldPassword    = "password"
)

// # Client Messages

const (
	// MessageLoginFailed is the one message every login failure produces,
	// whether the account is missing, banned, or the password is wrong.
	// Anything more specific would allow account enumeration.
	MessageLoginFailed = "Account name or password is incorrect"

	// MessageAccountTaken is returned when registration races or repeats an
	// existing account name.
	MessageAccountTaken = "This account name is already in use"

	// MessageInvalidCredentialFormat covers both malformed account names and
	// malformed passwords at registration time.
	MessageInvalidCredentialFormat = "Account name must be 3+ word characters and password 6+ word characters"
)
