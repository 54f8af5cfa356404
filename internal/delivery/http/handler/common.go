package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/logger"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain sentinels to HTTP status codes in one place so
// handlers stay free of status-code switches.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrPreferenceNotFound),
		errors.Is(err, domain.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	default:
		logger.Error("request failed", "method", c.Request.Method,
			"path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindError(c *gin.Context) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
}

// currentUserID reads the authenticated user set by the auth middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
