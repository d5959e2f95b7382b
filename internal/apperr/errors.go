package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
	ErrStorage    = errors.New("storage")    // 500
	ErrFatal      = errors.New("fatal process error")
)

// Error carries a kind, a message safe to show to clients and an optional cause.
// errors.Is matches both the kind and anything in the cause chain.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func Conflict(msg string, cause error) error {
	return &Error{Kind: ErrConflict, Message: msg, Cause: cause}
}

// Storage wraps a failed database operation. A nil cause yields nil.
func Storage(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: ErrStorage, Message: op, Cause: cause}
}

func Fatal(cause error) error {
	return &Error{Kind: ErrFatal, Message: "fatal process error", Cause: cause}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides causes of server-side failures.
func PublicMessage(err error) string {
	var ae *Error
	if !errors.As(err, &ae) {
		return "internal error"
	}
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return ae.Message
	}
	if ae.Cause != nil && ae.Kind != ErrConflict {
		return ae.Error()
	}
	return ae.Message
}
