// Package response writes JSON bodies and maps AppError codes onto HTTP
// statuses for every handler and middleware of the API.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/mroshb/kudos/pkg/errors"
	"github.com/mroshb/kudos/pkg/logger"
)

// ErrorBody is the shape of every non-2xx JSON response.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// StatusFor maps an error code to the HTTP status it is reported with.
func StatusFor(code string) int {
	switch code {
	case errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeAlreadyExists:
		return http.StatusConflict
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case errors.ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes err as an ErrorBody. Unclassified errors are logged with their
// cause and reported with a generic message.
func Error(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	status := StatusFor(code)

	message := "Internal server error"
	if appErr, ok := errors.AsAppError(err); ok {
		message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	}

	JSON(w, status, ErrorBody{
		Message: http.StatusText(status),
		Error:   message,
	})
}
