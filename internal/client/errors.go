package client

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrValidation matches an *APIError for a rejected payload or filter.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized matches an *APIError for missing or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches an *APIError for an absent or foreign resource.
	ErrNotFound = errors.New("not found")
	// ErrSessionTerminated is returned once credentials could not be renewed
	// and the session has been cleared.
	ErrSessionTerminated = errors.New("session terminated")
	// ErrNotLoggedIn is returned by calls that need a user when none is set.
	ErrNotLoggedIn = errors.New("not logged in")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s (%d)", msg, e.StatusCode)
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("%s (%d): %s", msg, e.StatusCode, strings.Join(parts, "; "))
}

// Is maps status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// NetworkError is a transport failure: the request never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
