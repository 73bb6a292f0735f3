package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/mogg-backend/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeRoomExpired        = "ROOM_EXPIRED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeAlreadyPlayed      = "ALREADY_PLAYED"
	CodeProfileNotFound    = "PROFILE_NOT_FOUND"
	CodePasscodesExhausted = "PASSCODES_EXHAUSTED"
	CodeAnonNamesExhausted = "ANON_NAMES_EXHAUSTED"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrRoomExpired):
		return &httpError{http.StatusNotFound, APIError{CodeRoomExpired, "Room expired."}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusForbidden, APIError{CodeUnauthorized, "Unauthorized."}}
	case errors.Is(err, model.ErrAlreadyPlayed):
		return &httpError{http.StatusBadRequest, APIError{CodeAlreadyPlayed, "Already played!"}}
	case errors.Is(err, model.ErrInvalidUsername):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Username is required"}}
	case errors.Is(err, model.ErrInvalidScore):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Score must be a non-negative integer"}}
	case errors.Is(err, model.ErrInvalidCoins):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Coins must be a non-negative integer"}}
	case errors.Is(err, model.ErrProfileNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProfileNotFound, "User not found"}}
	case errors.Is(err, model.ErrPasscodesExhausted):
		return &httpError{http.StatusServiceUnavailable, APIError{CodePasscodesExhausted, "No room passcodes available, try again later"}}
	case errors.Is(err, model.ErrAnonymousNamesExhausted):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeAnonNamesExhausted, "No anonymous names available, try again later"}}
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusInternalServerError, APIError{CodeStoreUnavailable, "Storage is unavailable"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewNotFoundError creates an error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewMethodNotAllowedError creates an error for a known route hit with the wrong method
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeMethodNotAllowed, "Method not allowed"}}
}
