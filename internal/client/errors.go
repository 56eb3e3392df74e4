// ABOUTME: Error taxonomy for backend calls
// ABOUTME: Unauthorized is an explicit result; callers route it to one session handler

package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any 401 response. It is never handled inside the
	// client: callers pass it to the session's unauthorized handler.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")

	ErrBackendUnreachable = errors.New("cannot connect to backend")
	ErrRequestTimeout     = errors.New("request timed out")
	ErrRequestCanceled    = errors.New("request canceled")
)

// Fixed user-facing messages
const (
	MsgBackendUnreachable = "Cannot reach the backend server. Make sure it is running."
	MsgRequestTimeout     = "The backend did not respond in time. Try again."
	MsgRequestCanceled    = "The request was canceled."
	MsgInvalidCredentials = "Invalid username or password."
	MsgLoginFailed        = "Login failed."
)

// ErrorResponse is the JSON error body sent by the backend
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// APIError is a non-2xx backend response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error: %s", e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Is maps status codes onto the sentinel errors
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

// IsConnectivity reports whether err is a transport failure rather than a backend answer
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrBackendUnreachable) ||
		errors.Is(err, ErrRequestTimeout) ||
		errors.Is(err, ErrRequestCanceled)
}

// UserMessage turns err into text fit for display. The server's message is
// shown verbatim when it sent one; otherwise fallback is used.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrBackendUnreachable):
		return MsgBackendUnreachable
	case errors.Is(err, ErrRequestTimeout):
		return MsgRequestTimeout
	case errors.Is(err, ErrRequestCanceled):
		return MsgRequestCanceled
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// LoginFailureMessage is UserMessage specialised for the login form, where a
// 401 means bad credentials rather than an expired session.
func LoginFailureMessage(err error) string {
	if errors.Is(err, ErrUnauthorized) {
		return MsgInvalidCredentials
	}
	return UserMessage(err, MsgLoginFailed)
}
