package api

import (
	"errors"
	"net/http"

	"storefront-service/internal/media"
	"storefront-service/internal/service"
	"storefront-service/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidSlot),
		errors.Is(err, media.ErrEmptyUpload):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnknownEmail),
		errors.Is(err, service.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrDuplicateID),
		errors.Is(err, service.ErrCartConflict),
		errors.Is(err, service.ErrOrderInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, service.ErrUnknownEmail):
		return "Invalid email"
	case errors.Is(err, service.ErrWrongPassword):
		return "Wrong password"
	case errors.Is(err, store.ErrDuplicateEmail):
		return "Existing user found with same email address"
	case errors.Is(err, service.ErrCartConflict):
		return "Cart was modified concurrently, try again"
	default:
		return err.Error()
	}
}

// writeError maps a service error to a status and a {success:false, errors} body.
// Internal failures are logged and answered with a generic message.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"success": false, "errors": "internal error"})
		return
	}

	c.JSON(status, gin.H{"success": false, "errors": messageFor(err)})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"errors":  "Invalid request body",
		"details": err.Error(),
	})
}
