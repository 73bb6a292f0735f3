package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/mogg-backend/internal/api/apierr"
	"github.com/mcoot/mogg-backend/internal/middleware"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeRoomExpired        = apierr.CodeRoomExpired
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeAlreadyPlayed      = apierr.CodeAlreadyPlayed
	CodeProfileNotFound    = apierr.CodeProfileNotFound
	CodePasscodesExhausted = apierr.CodePasscodesExhausted
	CodeAnonNamesExhausted = apierr.CodeAnonNamesExhausted
	CodeStoreUnavailable   = apierr.CodeStoreUnavailable
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// writeError logs server-side failures, which never reach the client
// verbatim, then writes the error response
func writeError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	WriteError(w, err)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return NewInvalidRequestError("Invalid request body")
	}
	return nil
}
