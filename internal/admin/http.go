// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minagawa/picboard/internal/platform/constants"
	"github.com/minagawa/picboard/internal/platform/respond"
	"github.com/minagawa/picboard/internal/platform/validate"
	"github.com/minagawa/picboard/internal/users/auth"
	"github.com/minagawa/picboard/pkg/pagination"

	requestutil "github.com/minagawa/picboard/internal/platform/request"
)

// # Definitions & Constructors

// Handler implements the moderation and reset HTTP endpoints.
type Handler struct {
	adminService *Service
	authService  *auth.Service
}

// NewHandler constructs a new [Handler] with its service dependencies.
func NewHandler(adminService *Service, authService *auth.Service) *Handler {
	return &Handler{adminService: adminService, authService: authService}
}

// Routes returns a [chi.Router] with the admin-only routes.
//
// # Endpoints
//   - GET  /banned : Paginated list of bannable users.
//   - POST /banned : Bulk soft-delete by user id (CSRF-checked).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/banned", handler.listBannable)
	router.Post("/banned", handler.banUsers)

	return router
}

// Initialize is the environment reset endpoint, mounted at POST /initialize.
//
// It carries no authentication: it runs before any user exists and is only
// reachable in deployment environments that expose it.
func (handler *Handler) Initialize(writer http.ResponseWriter, request *http.Request) {
	handler.adminService.Initialize(request.Context())
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

/*
listBannable renders the moderation candidates.

GET /admin/banned?page=1&limit=20

Response:
  - 200: Paginated []auth.User
  - 401: Anonymous session
  - 403: Non-admin account
*/
func (handler *Handler) listBannable(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor, err := handler.authService.RequireUser(ctx, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	users, total, err := handler.adminService.BannableUsers(ctx, actor, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

// # Ban Submission

type banRequest struct {
	UserIDs   []int64 `json:"user_ids"`
	CSRFToken string  `json:"csrf_token"`
}

/*
banUsers soft-deletes the submitted accounts.

POST /admin/banned

Request:
  - Body: banRequest

Response:
  - 204: Users banned
  - 400: Empty or malformed id set
  - 401: Anonymous session
  - 403: Non-admin account or CSRF mismatch
*/
func (handler *Handler) banUsers(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor, err := handler.authService.RequireUser(ctx, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input banRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.authService.VerifyCSRF(ctx, sessionID, input.CSRFToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.adminService.BanUsers(ctx, actor, input.UserIDs); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
