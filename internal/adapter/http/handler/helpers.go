package handler

import (
	"errors"
	"net/http"

	"eagle-bank-api/internal/adapter/http/middleware"
	"eagle-bank-api/pkg/apperror"
	"eagle-bank-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// bindError maps a binding failure to the client-facing error.
func bindError(err error) *apperror.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.ErrPayloadTooLarge()
	}
	return apperror.Validation(err.Error())
}

// currentUser returns the authenticated user or writes 401 and returns false.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return "", false
	}
	return userID, true
}
