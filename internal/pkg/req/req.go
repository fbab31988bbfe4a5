/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates the logic for parsing JSON request bodies, and integrates
error handling to ensure data format correctness and size constraints, facilitating
subsequent business logic processing.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"bekgram/internal/pkg/errs"
)

const (
	// MaxJSONBodySize defines the maximum allowed size (1 MB) for ordinary JSON request bodies.
	MaxJSONBodySize int64 = 1 << 20 // 1 MB

	// MaxMediaBodySize defines the maximum allowed size (35 MB) for JSON bodies carrying
	// base64-encoded media payloads (avatar and chat media uploads).
	MaxMediaBodySize int64 = 35 << 20 // 35 MB
)

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
// The body is capped at MaxJSONBodySize unless the route installed a larger limit via LimitBody.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// LimitBody installs a MaxBytesReader on the request body with the given ceiling.
func LimitBody(w http.ResponseWriter, r *http.Request, limit int64) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
}
