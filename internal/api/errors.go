package api

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized matches any AuthError.
	ErrUnauthorized = errors.New("api: unauthorized (token missing, expired or invalid)")
	// ErrMalformedResponse indicates a 2xx body that could not be decoded or
	// broke a value invariant.
	ErrMalformedResponse = errors.New("api: malformed response")
	// ErrInvalidInput indicates a request rejected locally before sending.
	ErrInvalidInput = errors.New("api: invalid input")
)

// AuthError is returned for 401 and 422 responses. By the time the caller
// sees it the stored token is already gone.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: unauthorized (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: unauthorized (%d)", e.Status)
}

// Is makes errors.Is(err, ErrUnauthorized) hold.
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// HTTPError is any other non-2xx response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Kind groups errors by how a surface should react to them.
type Kind int

const (
	KindNone Kind = iota
	KindAuth
	KindValidation
	KindServer
	KindNetwork
	KindMalformed
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Classify returns the Kind of err.
func Classify(err error) Kind {
	var (
		httpErr *HTTPError
		netErr  *NetworkError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnauthorized):
		return KindAuth
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformed
	case errors.As(err, &httpErr):
		return KindServer
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// Generic banner texts.
const (
	MsgSessionExpired = "Your session has expired. Please log in again."
	MsgNetwork        = "Could not reach the server. Check your connection and try again."
	MsgMalformed      = "The server sent an unexpected response. Please try again."
	MsgGeneric        = "Something went wrong. Please try again."
)

// UserMessage turns err into text suitable for an error banner. Server and
// validation messages are passed through when present.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindAuth:
		var ae *AuthError
		if errors.As(err, &ae) && ae.Message != "" {
			return ae.Message
		}
		return MsgSessionExpired
	case KindValidation:
		return err.Error()
	case KindServer:
		var he *HTTPError
		if errors.As(err, &he) && he.Message != "" {
			return he.Message
		}
		return MsgGeneric
	case KindNetwork:
		return MsgNetwork
	case KindMalformed:
		return MsgMalformed
	default:
		return MsgGeneric
	}
}
