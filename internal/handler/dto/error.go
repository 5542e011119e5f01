package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mtlprog/kanban/internal/domain"
	"github.com/mtlprog/kanban/internal/storage"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// ErrInvalidRequest marks a request that could not be turned into a domain value.
var ErrInvalidRequest = errors.New("invalid request")

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST", message

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "TASK_NOT_FOUND", message
	case errors.Is(err, domain.ErrSchedulingConflict):
		return http.StatusConflict, "SCHEDULING_CONFLICT", message

	// Validation errors
	case errors.Is(err, domain.ErrInvalidReference):
		return http.StatusUnprocessableEntity, "INVALID_REFERENCE", message
	case errors.Is(err, domain.ErrValidationRejected):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Persistence errors
	case errors.Is(err, storage.ErrUnavailable), errors.Is(err, storage.ErrCorrupt):
		slog.Error("storage error returned to client", "error", err)
		return http.StatusInternalServerError, "STORAGE_ERROR", "Failed to persist tasks"

	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
