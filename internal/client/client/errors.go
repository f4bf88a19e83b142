package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrServer            = errors.New("server error")
	ErrMalformedResponse = errors.New("malformed response")
)

// Kind classifies an APIError.
type Kind int

const (
	// KindNetwork means no HTTP response was received at all.
	KindNetwork Kind = iota + 1
	// KindAuth covers 401 and 403 responses.
	KindAuth
	// KindServer covers every other non-2xx response.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// APIError is returned for every failed API call. Body holds the raw
// response text, which may be empty, plain text or JSON.
type APIError struct {
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Kind == KindNetwork {
		return fmt.Sprintf("network failure: %v", e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is maps the error kind onto the package sentinels so callers can write
// errors.Is(err, client.ErrUnauthorized).
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindNetwork
	case ErrUnauthorized:
		return e.Kind == KindAuth
	case ErrServer:
		return e.Kind == KindServer
	}
	return false
}

func statusError(code int, body string) *APIError {
	kind := KindServer
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		kind = KindAuth
	}
	return &APIError{Kind: kind, StatusCode: code, Body: body}
}

func networkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Err: err}
}

// IsAuthError reports whether err is an authorization failure returned by
// an authenticated call.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
