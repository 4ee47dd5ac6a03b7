package api

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestIDHeader is the response header carrying the backend correlation id.
const RequestIDHeader = "X-Request-Id"

var (
	// ErrUnauthorized is returned for HTTP 401 responses, e.g. a login with
	// the wrong email or password.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserAlreadyExists is returned when sign-up hits an existing email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrNotFound is returned for HTTP 404 responses.
	ErrNotFound = errors.New("not found")
)

// userExistsTitle is the problem title the backend uses for sign-up conflicts.
const userExistsTitle = "UserAlreadyExists"

// NetworkError means no response was received from the API.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError is an HTTP error response from the API.
type StatusError struct {
	Op          string
	StatusCode  int
	RequestID   string
	Title       string
	Description string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Title != "" {
		msg += ": " + e.Title
	}
	if e.Description != "" {
		msg += " (" + e.Description + ")"
	}
	return msg
}

// Is maps well-known responses onto the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUserAlreadyExists:
		return e.Title == userExistsTitle
	}
	return false
}

// IsNetwork reports whether err means the API could not be reached.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// RequestID extracts the backend correlation id from err, if any.
func RequestID(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.RequestID
	}
	return ""
}
