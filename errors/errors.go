package errors

import (
	"errors"
	"net/http"
)

var (
	// Coordinator taxonomy. These are the only failures a connection can
	// be handed back; everything else is wrapped into ErrPersistence.
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrNotAParticipant      = errors.New("not a participant of this conversation")
	ErrNotFound             = errors.New("not found")
	ErrPersistence          = errors.New("persistence unavailable")
	ErrAlreadyAuthenticated = errors.New("connection already authenticated")

	// Auth surface.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidPassword    = errors.New("password does not meet complexity requirements")
	ErrTokenGeneration    = errors.New("token generation failed")

	// Supervision.
	ErrWorkerPanic = errors.New("worker panic")
)

// WireCode maps a failure to the code field of an outbound error event.
func WireCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrNotAParticipant):
		return "NOT_A_PARTICIPANT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrAlreadyAuthenticated):
		return "ALREADY_AUTHENTICATED"
	case errors.Is(err, ErrPersistence):
		return "PERSISTENCE_FAILURE"
	default:
		return "INTERNAL"
	}
}

// HTTPStatus maps a failure to a REST status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotAParticipant):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
