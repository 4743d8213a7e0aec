package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
	"github.com/JonMunkholm/CompanyPortal/internal/export"
	"github.com/JonMunkholm/CompanyPortal/internal/logging"
)

var (
	errRateLimited  = errors.New("rate limit exceeded")
	errNoFile       = errors.New("no file provided")
	errInvalidJSON  = errors.New("invalid json body")
	errInvalidQuery = errors.New("invalid enum: unsupported query parameter value")
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Action    string `json:"action,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// statusFor picks the HTTP status of err.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrEmptyInput),
		errors.Is(err, core.ErrUnsupportedFile),
		errors.Is(err, core.ErrMissingColumns),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, errNoFile),
		errors.Is(err, errInvalidJSON),
		errors.Is(err, errInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound), errors.Is(err, export.ErrNoRecords):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyUploads), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error with the request ID and writes the
// mapped user-facing message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(r, err)
	writeJSON(w, status, body)
}

// errorResponse logs err and returns the status and body respondError would
// write, for handlers that add fields to the error body.
func errorResponse(r *http.Request, err error) (int, ErrorResponse) {
	status := statusFor(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	return status, ErrorResponse{
		Error:     msg.Message,
		Action:    msg.Action,
		Code:      msg.Code,
		RequestID: middleware.GetReqID(r.Context()),
	}
}
