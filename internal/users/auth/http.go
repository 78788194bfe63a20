// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/minagawa/picboard/internal/platform/request"
	"github.com/minagawa/picboard/internal/platform/respond"
	"github.com/minagawa/picboard/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication lifecycle HTTP endpoints.
//
// # Scope
//
// Registration, login, and logout. Identity resolution for other features
// happens through [Service.CurrentUser], not through this handler.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the auth lifecycle routes.
//
// # Endpoints
//   - POST /register : Creates an account and binds it to the session.
//   - POST /login    : Authenticates and binds the account to the session.
//   - POST /logout   : Unbinds the identity (idempotent).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	return router
}

// # Request Payloads

type credentialsRequest struct {
	AccountName string `json:"account_name"`
	Password    string `json:"password"`
}

// sessionResponse is returned by register and login: the identity plus the
// CSRF token the client must echo on state-changing submissions.
type sessionResponse struct {
	User      *User  `json:"user"`
	CSRFToken string `json:"csrf_token"`
}

/*
register handles account creation.

POST /register

Description: Validates the credential format, persists the account, and binds
it to the caller's session.

Request:
  - Body: credentialsRequest (AccountName, Password)

Response:
  - 201: sessionResponse: The new identity and its CSRF token
  - 400: Malformed JSON or credential format failures
  - 409: Account name already in use
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input credentialsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.authService.Register(request.Context(), sessionID, RegisterInput{
		AccountName: input.AccountName,
		Password:    input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.CSRFToken(request.Context(), sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, sessionResponse{User: user, CSRFToken: token})
}

/*
login handles an authentication attempt.

POST /login

Request:
  - Body: credentialsRequest (AccountName, Password)

Response:
  - 200: sessionResponse: The identity and its (rotated) CSRF token
  - 401: One generic failure for missing account, banned account, or wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input credentialsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.authService.Login(request.Context(), sessionID, LoginInput{
		AccountName: input.AccountName,
		Password:    input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.CSRFToken(request.Context(), sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionResponse{User: user, CSRFToken: token})
}

/*
logout unbinds the session's identity.

POST /logout

Response:
  - 204: Always, including for sessions that were never authenticated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	sessionID := requestutil.SessionID(request)

	if err := handler.authService.Logout(request.Context(), sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
