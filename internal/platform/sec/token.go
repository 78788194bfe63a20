// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// # Random Tokens

// csrfAlphabet is the character set CSRF tokens are drawn from.
// Lowercase alphanumerics keep the token safe in URLs, forms, and logs.
const csrfAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

/*
NewCSRFToken generates a fixed-length random token from [a-z0-9].

Description: Each position is drawn uniformly via crypto/rand; rejection
sampling inside [rand.Int] removes modulo bias.

Parameters:
  - length: int (number of characters, typically constants.CSRFTokenLength)

Returns:
  - string: The generated token
  - error: Entropy source failures
*/
func NewCSRFToken(length int) (string, error) {
	token := make([]byte, length)
	alphabetSize := big.NewInt(int64(len(csrfAlphabet)))

	for i := range token {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("sec: csrf token generation failed: %w", err)
		}
		token[i] = csrfAlphabet[idx.Int64()]
	}

	return string(token), nil
}
