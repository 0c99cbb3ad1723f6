// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cardfolio/cardfolio/internal/platform/apperr"
	"github.com/cardfolio/cardfolio/internal/platform/ctxutil"
	"github.com/cardfolio/cardfolio/internal/platform/sec"
	"github.com/cardfolio/cardfolio/internal/platform/validate"
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
Principal extracts the authenticated principal from the request context.

Returns nil if the request is not authenticated.
*/
func Principal(request *http.Request) *sec.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredPrincipal ensures the request is authenticated and returns the principal.

Returns:
  - *sec.Principal: The authenticated principal
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredPrincipal(request *http.Request) (*sec.Principal, error) {

	// Get the principal
	principal := ctxutil.GetPrincipal(request.Context())

	// If the user is not authenticated, return an error
	if principal == nil {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}

	return principal, nil
}

/*
ImageUpload holds the raw bytes and content type of an uploaded image file.
*/
type ImageUpload struct {
	Data        []byte
	ContentType string
}

/*
ReadOptionalImageUpload reads a multipart image file when the field is present.

Parameters:
  - request: *http.Request (multipart/form-data)
  - field: string (form field name)
  - maxBytes: int64 (upper bound on the decoded file size)

Returns:
  - *ImageUpload: The file, or nil when the field was not submitted
  - error: apperr.ValidationError if a submitted file is not an image or too large
*/
func ReadOptionalImageUpload(request *http.Request, field string, maxBytes int64) (*ImageUpload, error) {
	if err := request.ParseMultipartForm(maxBytes); err != nil {
		return nil, apperr.ValidationError("Invalid multipart form data")
	}

	if request.MultipartForm == nil || len(request.MultipartForm.File[field]) == 0 {
		return nil, nil
	}

	return ReadImageUpload(request, field, maxBytes)
}

/*
ReadImageUpload reads a multipart image file from the request.

Parameters:
  - request: *http.Request (multipart/form-data)
  - field: string (form field name, e.g. "file")
  - maxBytes: int64 (upper bound on the decoded file size)

Returns:
  - *ImageUpload: The file bytes and declared content type
  - error: apperr.ValidationError if the file is missing, not an image, or too large
*/
func ReadImageUpload(request *http.Request, field string, maxBytes int64) (*ImageUpload, error) {

	// Bound the in-memory part buffer; larger parts spill to temp files
	if err := request.ParseMultipartForm(maxBytes); err != nil {
		return nil, apperr.ValidationError("Invalid multipart form data")
	}

	file, header, err := request.FormFile(field)
	if err != nil {
		return nil, apperr.ValidationError("Missing file field '" + field + "'")
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.ValidationError("File must be an image")
	}

	if header.Size > maxBytes {
		return nil, apperr.ValidationError("File exceeds maximum allowed size")
	}

	// LimitReader caps the read even if the declared size header lies
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, apperr.ValidationError("Could not read uploaded file")
	}
	if int64(len(data)) > maxBytes {
		return nil, apperr.ValidationError("File exceeds maximum allowed size")
	}

	return &ImageUpload{Data: data, ContentType: contentType}, nil
}
