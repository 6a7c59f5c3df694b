package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chunkrelay/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response. Details carries the
// backend's original message when the store rejected an operation.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "object not found"
	case errors.Is(err, domain.ErrInvalidKey):
		return http.StatusBadRequest, "INVALID_KEY", "object key is empty or invalid"
	case errors.Is(err, domain.ErrChunkTooSmall):
		return http.StatusBadRequest, "CHUNK_TOO_SMALL", "configured chunk size is below the backend minimum part size"
	case errors.Is(err, domain.ErrTooManyParts):
		return http.StatusBadRequest, "TOO_MANY_PARTS", "file would exceed the backend part count limit"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusBadRequest, "SESSION_NOT_FOUND", "upload session not found or expired"
	case errors.Is(err, domain.ErrSessionTerminated):
		return http.StatusConflict, "SESSION_TERMINATED", "upload session already completed or aborted"
	case errors.Is(err, domain.ErrPartOutOfRange):
		return http.StatusBadRequest, "PART_OUT_OF_RANGE", "part number outside the planned range"
	case errors.Is(err, domain.ErrDuplicatePart):
		return http.StatusBadRequest, "DUPLICATE_PART", "duplicate part number in completion set"
	case errors.Is(err, domain.ErrPartSetIncomplete):
		return http.StatusBadRequest, "PART_SET_INCOMPLETE", "completion set does not cover every planned part"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Backend rejections become 500s carrying the original store message.
func HandleError(c *gin.Context, err error) {
	var backendErr *domain.BackendError
	if errors.As(err, &backendErr) {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] backend error: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Error: &APIError{
				Code:    "BACKEND_ERROR",
				Message: "object store rejected the operation",
				Details: backendErr.Err.Error(),
			},
		})
		return
	}

	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
