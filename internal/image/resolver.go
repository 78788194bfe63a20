// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

/*
Package image serves stored post images by filename.

A request names a file as "{postId}.{ext}"; the resolver parses it, loads the
post's stored payload, and verifies the extension agrees with the stored mime
type before releasing any bytes.

Architecture:

  - Resolver: Filename parsing, mime arbitration.
  - Store: Blob access (the only reader of posts.imgdata).

Every failure surfaces to clients as a plain not-found. Which stage rejected
the request (parse, lookup, mime pairing) is recorded in the error cause for
logs only — the response must not reveal whether a post id exists.
*/
package image

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/minagawa/picboard/internal/platform/apperr"
)

// # Extension Table

// extMimes pairs each accepted filename extension with the one stored mime
// type it may serve. The table is closed: unknown extensions never resolve.
var extMimes = map[string]string{
	"jpg": "image/jpeg",
	"png": "image/png",
	"gif": "image/gif",
}

// # Failure Causes (log-only)

var (
	// errMalformedPath marks filenames that do not parse as {postId}.{ext}.
	errMalformedPath = errors.New("image: malformed path")

	// errMimeMismatch marks an extension that contradicts the stored mime.
	errMimeMismatch = errors.New("image: extension does not match stored mime")
)

// # Entity

// Image is a resolved payload ready to write to a client.
type Image struct {
	PostID int64
	Mime   string
	Data   []byte
}

// # Resolver

// Store loads a post's stored mime and payload.
type Store interface {
	// FindImage returns the stored mime and blob for a post, or
	// apperr.NotFound when the post does not exist.
	FindImage(ctx context.Context, postID int64) (mime string, data []byte, err error)
}

// Resolver maps image filenames to stored payloads.
type Resolver struct {
	store Store
}

// NewResolver constructs a [Resolver] over the given blob store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

/*
Resolve parses a filename and returns the matching stored image.

Description: The filename must be "{postId}.{ext}" with a positive integer id
and an extension from the fixed table. The stored mime must agree with the
extension; a mismatch is rejected without revealing that the post exists.

Parameters:
  - ctx: context.Context
  - filename: string (e.g. "12345.png")

Returns:
  - *Image: Stored mime and exact bytes
  - error: apperr.NotFound for every rejection; cause distinguishes in logs
*/
func (resolver *Resolver) Resolve(ctx context.Context, filename string) (*Image, error) {
	postID, ext, err := parseFilename(filename)
	if err != nil {
		return nil, notFound(err)
	}

	expectedMime, known := extMimes[ext]
	if !known {
		return nil, notFound(fmt.Errorf("%w: unknown extension %q", errMalformedPath, ext))
	}

	storedMime, data, err := resolver.store.FindImage(ctx, postID)
	if err != nil {
		return nil, err
	}

	if storedMime != expectedMime {
		return nil, notFound(fmt.Errorf("%w: %q vs stored %q", errMimeMismatch, ext, storedMime))
	}

	return &Image{PostID: postID, Mime: storedMime, Data: data}, nil
}

// parseFilename splits "{postId}.{ext}" and validates the id.
func parseFilename(filename string) (int64, string, error) {
	separator := strings.LastIndexByte(filename, '.')
	if separator <= 0 || separator == len(filename)-1 {
		return 0, "", fmt.Errorf("%w: %q", errMalformedPath, filename)
	}

	rawID := filename[:separator]
	ext := filename[separator+1:]

	postID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || postID <= 0 {
		return 0, "", fmt.Errorf("%w: bad id %q", errMalformedPath, rawID)
	}

	return postID, ext, nil
}

// notFound wraps a rejection cause in the one client-visible error shape.
func notFound(cause error) *apperr.AppError {
	appError := apperr.NotFound("Image")
	appError.Cause = cause
	return appError
}
