// Package errs defines the coded errors the API surfaces to clients. Every
// failure a handler can return is a CustomError drawn from the central error
// map, pairing a stable business code with an HTTP status and a
// client-facing message.
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"bekgram/internal/pkg/logx"
)

// CustomError is a coded application error.
type CustomError struct {
	Code    int    // stable business code, see error_codes.go
	Message string // client-facing description
	Status  int    // HTTP status the transport should respond with
}

func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError instantiates the error registered under code. Message templates
// containing printf verbs are filled from details; passing details to a
// template without verbs logs a warning and drops them. A code missing from
// the map is a programming error and degrades to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)
		template = errorMap[ErrUnknown]
		return &template
	}

	e := template
	if e.Status == 0 {
		e.Status = http.StatusOK
	}

	if len(details) == 0 {
		return &e
	}

	switch {
	case code == ErrUnknown:
		// The underlying cause never reaches the client, only the log.
		if cause, ok := details[0].(error); ok {
			logx.Error(cause, "Handling ErrUnknown with underlying error")
		}
	case strings.Contains(e.Message, "%"):
		e.Message = fmt.Sprintf(e.Message, details...)
	default:
		logx.Warn(
			"Details provided for error, but message template has no formatting placeholders. Details ignored.",
		)
	}

	return &e
}
