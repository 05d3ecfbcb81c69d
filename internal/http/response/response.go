// Package response writes envelope-shaped JSON for handlers that live outside huma:
// middleware, the SSE endpoint and the router's fallbacks.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/versemark/versemark-server/internal/errors"
)

// Version matches the envelope version of the huma API.
const Version = 1

// CodeRateLimited is the error code for 429 responses.
const CodeRateLimited = "RATE_LIMITED"

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Version int        `json:"v"`
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the error member of a failed envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	write(w, status, Envelope{
		Version: Version,
		Success: status < 400,
		Data:    data,
	}, logger)
}

// Error writes an error response with the given status code and error code.
func Error(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	write(w, status, Envelope{
		Version: Version,
		Error:   &ErrorBody{Code: code, Message: message},
	}, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, string(domainerrors.CodeNotFound), message, logger)
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, string(domainerrors.CodeValidation), "method not allowed", logger)
}

// TooManyRequests writes a 429 response asking the client to retry after retryAfter seconds.
func TooManyRequests(w http.ResponseWriter, retryAfter string, logger *slog.Logger) {
	w.Header().Set("Retry-After", retryAfter)
	Error(w, http.StatusTooManyRequests, CodeRateLimited, "Too many requests. Please try again later.", logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, string(domainerrors.CodeInternal), message, logger)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain errors keep their status, code and details; unknown errors become 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		write(w, domainErr.HTTPStatus(), Envelope{
			Version: Version,
			Error: &ErrorBody{
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			},
		}, logger)
		return
	}

	// Unknown error = 500
	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, "internal server error", logger)
}

func write(w http.ResponseWriter, status int, envelope Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}
