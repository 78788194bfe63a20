// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package middleware

import (
	"net/http"

	"github.com/minagawa/picboard/internal/platform/constants"
	"github.com/minagawa/picboard/internal/platform/ctxutil"
	"github.com/minagawa/picboard/pkg/uuid"
)

// # Session Cookie Handling

// EnsureSession guarantees every visitor has an opaque session id.
//
// # Flow
//
//  1. Read the session cookie if the client presented one.
//  2. Otherwise mint a fresh opaque id and set the cookie (first contact).
//  3. Inject the id into the request context for the auth service to resolve.
//
// The middleware never touches the session store: an id with no backing Redis
// state simply resolves to an anonymous visitor. The cookie is HttpOnly and
// SameSite=Lax so scripts cannot read it and cross-site POSTs do not carry it.
func EnsureSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			sessionID := ""
			if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
				sessionID = cookie.Value
			}

			// First contact: mint an id and hand it to the client.
			if sessionID == "" {
				sessionID = uuid.New()
				http.SetCookie(writer, &http.Cookie{
					Name:     constants.SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(constants.SessionTTL.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := ctxutil.WithSessionID(request.Context(), sessionID)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
