// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package feed

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minagawa/picboard/internal/platform/constants"
	"github.com/minagawa/picboard/internal/platform/respond"
	"github.com/minagawa/picboard/internal/platform/validate"
	"github.com/minagawa/picboard/internal/users/auth"
	"github.com/minagawa/picboard/pkg/convert"

	requestutil "github.com/minagawa/picboard/internal/platform/request"
)

// # Definitions & Constructors

// Handler implements the board's feed and posting HTTP endpoints.
type Handler struct {
	feedService *Service
	authService *auth.Service
}

// NewHandler constructs a new [Handler] with its service dependencies.
func NewHandler(feedService *Service, authService *auth.Service) *Handler {
	return &Handler{feedService: feedService, authService: authService}
}

// Routes returns a [chi.Router] with the feed routes.
//
// # Endpoints
//   - GET  /               : Front page feed.
//   - GET  /posts          : Feed page before a timestamp cursor.
//   - GET  /posts/{postID} : One post with its full comment thread.
//   - GET  /@{accountName} : A user's profile page.
//   - POST /               : Image upload (multipart, CSRF-checked).
//   - POST /comment        : Comment on a post (CSRF-checked).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.index)
	router.Get("/posts", handler.posts)
	router.Get("/posts/{postID}", handler.post)
	router.Get("/@{accountName}", handler.profile)
	router.Post("/", handler.upload)
	router.Post("/comment", handler.comment)

	return router
}

// # Response Payloads

// indexResponse is the front page: assembled items plus the visitor's state.
type indexResponse struct {
	Posts     []Item     `json:"posts"`
	User      *auth.User `json:"user"`
	Notice    string     `json:"notice,omitempty"`
	CSRFToken string     `json:"csrf_token"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

/*
index renders the front page feed.

GET /

Description: Assembles the latest posts, resolves the visitor's identity,
consumes any pending flash notice (delete-on-read), and issues the session's
CSRF token.

Response:
  - 200: indexResponse
*/
func (handler *Handler) index(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	sessionID := requestutil.SessionID(request)

	user, err := handler.authService.CurrentUser(ctx, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	csrfToken, err := handler.authService.CSRFToken(ctx, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	notice, err := handler.authService.ConsumeNotice(ctx, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := handler.feedService.Latest(ctx, csrfToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, indexResponse{
		Posts:     items,
		User:      user,
		Notice:    notice,
		CSRFToken: csrfToken,
	})
}

/*
posts renders a feed page at or before a timestamp cursor.

GET /posts?max_created_at=2026-01-02T15:04:05+09:00

Response:
  - 200: []Item (no visitor state; the front page carries that)
  - 400: Malformed cursor
*/
func (handler *Handler) posts(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	maxCreatedAt := time.Now()
	if raw := request.URL.Query().Get("max_created_at"); raw != "" {
		parsed, err := time.Parse(constants.ISO8601Format, raw)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError("max_created_at", "Must be an ISO-8601 timestamp"))
			return
		}
		maxCreatedAt = parsed
	}

	csrfToken, err := handler.authService.CSRFToken(ctx, requestutil.SessionID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := handler.feedService.Before(ctx, maxCreatedAt, csrfToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, items)
}

/*
post renders one post with its full comment thread.

GET /posts/{postID}

Response:
  - 200: Item
  - 404: Missing post, non-numeric id, or banned author
*/
func (handler *Handler) post(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	postID := convert.ToInt64(requestutil.Param(request, "postID"))
	if postID <= 0 {
		respond.Error(writer, request, validate.RequiredError("post_id", "Must be a positive integer"))
		return
	}

	csrfToken, err := handler.authService.CSRFToken(ctx, requestutil.SessionID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.feedService.GetPost(ctx, postID, csrfToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, item)
}

/*
profile renders a user's page: their posts and activity counts.

GET /@{accountName}

Response:
  - 200: Profile
  - 404: Missing or banned account
*/
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	csrfToken, err := handler.authService.CSRFToken(ctx, requestutil.SessionID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.feedService.Profile(ctx, requestutil.Param(request, "accountName"), csrfToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
upload handles an authenticated multipart image upload.

POST /

Request:
  - Multipart form: "file" (image part with Content-Type), "body" (caption),
    "csrf_token" (echo of the session's token)

Response:
  - 201: createdResponse
  - 400: Missing file, oversize payload, or unaccepted content type
  - 401: Anonymous session
  - 403: CSRF mismatch
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.RequireUser(ctx, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Bound the whole body before parsing; the service re-checks the decoded
	// payload length so the limit holds for both transport and storage.
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadSize+(1<<20))
	if err := request.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respond.Error(writer, request, validate.RequiredError("file", "File size is too large"))
		return
	}

	if err := handler.authService.VerifyCSRF(ctx, sessionID, request.FormValue(constants.FormFieldCSRFToken)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("file", "An image file is required"))
		return
	}
	defer file.Close()

	imgdata, err := io.ReadAll(file)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("file", "File upload could not be read"))
		return
	}

	postID, err := handler.feedService.CreatePost(ctx, user, CreatePostInput{
		DeclaredMime: header.Header.Get("Content-Type"),
		Imgdata:      imgdata,
		Body:         request.FormValue("body"),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, createdResponse{ID: postID})
}

// # Comment Submission

type commentRequest struct {
	PostID    int64  `json:"post_id"`
	Comment   string `json:"comment"`
	CSRFToken string `json:"csrf_token"`
}

/*
comment handles an authenticated comment submission.

POST /comment

Request:
  - Body: commentRequest

Response:
  - 201: createdResponse
  - 400: Malformed JSON, non-positive post_id, or empty comment
  - 401: Anonymous session
  - 403: CSRF mismatch
  - 404: Referenced post does not exist
*/
func (handler *Handler) comment(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.RequireUser(ctx, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.authService.VerifyCSRF(ctx, sessionID, input.CSRFToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	commentID, err := handler.feedService.CreateComment(ctx, user, input.PostID, input.Comment)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, createdResponse{ID: commentID})
}
