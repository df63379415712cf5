package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidMessage     = fmt.Errorf("message needs a body or a file")
	ErrMessageNotFound    = fmt.Errorf("message not found")
	ErrDeleteForbidden    = fmt.Errorf("only the sender may delete a message")
	ErrStoreUnavailable   = fmt.Errorf("store unavailable")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrInvalidPayload     = fmt.Errorf("invalid event payload")
)

// MapToHTTPStatus converts domain errors into HTTP status codes for the
// REST layer. Unknown errors map to 500 so internals never leak.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidMessage), errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrDeleteForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
