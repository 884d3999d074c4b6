package response

import (
	"errors"
	"net/http"
	"time"

	"eagle-bank-api/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key the request id middleware writes to.
const RequestIDKey = "request_id"

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, success(c, data))
}

// Created sends a 201 response with data. A non-empty location is the path
// of the new resource and is returned in the Location header.
func Created(c *gin.Context, location string, data interface{}) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusCreated, success(c, data))
}

func success(c *gin.Context, data interface{}) SuccessResponse {
	return SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: timestamp(),
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Error sends an error response. *apperror.AppError values map to their code
// and status; anything else is an opaque 500. The cause is attached to the
// gin context for the request logger and never reaches the client.
func Error(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, "SYS_000", "Internal server error"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, code, message = appErr.HTTPStatus, appErr.Code, appErr.Message
	}

	if err != nil {
		_ = c.Error(err)
	}
	if retryable(status) {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, ErrorResponse{
		ErrorCode: code,
		Message:   message,
		RequestID: getRequestID(c),
		Timestamp: timestamp(),
	})
}

// retryable covers lock contention, an exhausted keyspace and in-flight
// idempotent requests.
func retryable(status int) bool {
	return status == http.StatusServiceUnavailable || status == http.StatusConflict
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
