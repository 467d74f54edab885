package errors

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// APIError represents a failure surfaced to the client. The response body
// carries only the message; Code classifies the failure internally.
type APIError struct {
	Code    string `json:"-"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Error codes
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// Conflict reports a duplicate unique key. The original API surfaced these
// as 400, so the status code stays 400 while the code marks the conflict.
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource already exists"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeAlreadyExists, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// Recovery converts panics during request handling into a 500 response.
// Stack detail is included only outside release mode.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		body := gin.H{"message": "Internal server error"}
		if gin.Mode() != gin.ReleaseMode {
			body["stack"] = string(debug.Stack())
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}
