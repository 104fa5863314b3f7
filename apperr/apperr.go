// Package apperr defines the error kinds surfaced to API callers and the
// JSON envelope they are rendered into.
package apperr

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind classifies an error for the caller.
type Kind string

const (
	Unauthenticated  Kind = "unauthenticated"
	PermissionDenied Kind = "permission-denied"
	NotFound         Kind = "not-found"
	InvalidArgument  Kind = "invalid-argument"
	Internal         Kind = "internal"
)

// Error is an error with a caller-facing kind and message. Err holds the
// underlying cause, which is logged but never sent to the caller.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error of the given kind that keeps err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation converts ozzo validation errors into an InvalidArgument error
// with one message per field. Other errors pass through as InvalidArgument
// without field details.
func Validation(err error) *Error {
	out := &Error{Kind: InvalidArgument, Message: "validation failed", Err: err}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		out.Fields = make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			out.Fields[field] = ferr.Error()
		}
	}
	return out
}

// KindOf reports the kind of err. Errors that are not *Error are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case PermissionDenied:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Response is the JSON error envelope.
type Response struct {
	Success bool   `json:"success"`
	Error   Detail `json:"error"`
}

// Detail is the error body of Response.
type Detail struct {
	Code      Kind              `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// ToResponse renders err for the caller. Internal errors always get a
// generic message so causes never leak.
func ToResponse(err error, requestID string) (int, Response) {
	detail := Detail{Code: Internal, Message: "internal error", RequestID: requestID}

	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		detail.Code = e.Kind
		detail.Message = e.Message
		detail.Fields = e.Fields
	}

	return HTTPStatus(detail.Code), Response{Success: false, Error: detail}
}
