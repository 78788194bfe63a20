// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package image

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/minagawa/picboard/internal/platform/request"
	"github.com/minagawa/picboard/internal/platform/respond"
)

// Handler serves stored images.
type Handler struct {
	resolver *Resolver
}

// NewHandler constructs a new [Handler] with its resolver dependency.
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Routes returns a [chi.Router] with the image route.
//
// # Endpoints
//   - GET /{file} : Binary payload for "{postId}.{ext}".
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{file}", handler.serve)
	return router
}

/*
serve writes a stored image payload.

GET /image/{file}

Response:
  - 200: Exact stored bytes under the stored mime type
  - 404: Malformed filename, absent post, or mime/extension mismatch —
    indistinguishable from the outside
*/
func (handler *Handler) serve(writer http.ResponseWriter, request *http.Request) {
	img, err := handler.resolver.Resolve(request.Context(), requestutil.Param(request, "file"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Binary(writer, img.Mime, img.Data)
}
