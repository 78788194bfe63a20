// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/platform/ctxutil"
	"github.com/minagawa/picboard/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
SessionID extracts the visitor's opaque session id from the request context.

Returns an empty string when the session middleware saw no cookie — the
request is then anonymous but still serviceable for read endpoints.
*/
func SessionID(request *http.Request) string {
	return ctxutil.GetSessionID(request.Context())
}

/*
RequiredSessionID ensures the request carries a session and returns its id.

Returns:
  - string: The opaque session id
  - error: apperr.Unauthorized if no session was established
*/
func RequiredSessionID(request *http.Request) (string, error) {

	// Get the session id loaded by the session middleware
	sessionID := ctxutil.GetSessionID(request.Context())

	// Without a session there is no identity and no CSRF token to check against
	if sessionID == "" {
		return "", apperr.Unauthorized("Authentication required")
	}

	return sessionID, nil
}
