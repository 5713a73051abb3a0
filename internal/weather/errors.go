package weather

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a lookup failure by where it came from.
type Kind string

const (
	KindNetwork          Kind = "NETWORK"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindLocationNotFound Kind = "LOCATION_NOT_FOUND"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindUnknown          Kind = "UNKNOWN"
)

// Sentinel errors for use with errors.Is.
var (
	ErrNetwork          = &Error{Kind: KindNetwork, Message: "unable to reach the weather service"}
	ErrRateLimited      = &Error{Kind: KindRateLimited, Message: "weather service rate limit exceeded"}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput, Message: "invalid location query"}
	ErrLocationNotFound = &Error{Kind: KindLocationNotFound, Message: "location not found"}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized, Message: "weather service rejected the api key"}
	ErrUnknown          = &Error{Kind: KindUnknown, Message: "an unexpected error occurred"}
)

// Error is a classified lookup failure with a message fit for display.
type Error struct {
	Kind    Kind
	Message string
	Status  int   // upstream HTTP status, 0 if none
	Err     error // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("weather [%s]: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("weather [%s]: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// HTTPStatus is the status the local API answers with for this error.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindLocationNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnauthorized:
		return http.StatusBadGateway
	case KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewError builds a classified error.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// InvalidInput builds an INVALID_INPUT error.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// FromStatus classifies a non-2xx upstream response.
func FromStatus(status int, body string) *Error {
	var e *Error
	switch {
	case status == http.StatusBadRequest:
		e = &Error{Kind: KindInvalidInput, Message: "weather service rejected the location query"}
	case status == http.StatusUnauthorized:
		e = &Error{Kind: KindUnauthorized, Message: ErrUnauthorized.Message}
	case status == http.StatusNotFound:
		e = &Error{Kind: KindLocationNotFound, Message: ErrLocationNotFound.Message}
	case status == http.StatusTooManyRequests:
		e = &Error{Kind: KindRateLimited, Message: ErrRateLimited.Message}
	default:
		e = &Error{Kind: KindUnknown, Message: fmt.Sprintf("weather service returned status %d", status)}
	}
	e.Status = status
	if body != "" {
		e.Err = errors.New(body)
	}
	return e
}

// AsError returns err as an *Error, classifying anything else as UNKNOWN.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnknown, Message: ErrUnknown.Message, Err: err}
}
