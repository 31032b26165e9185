package handlers

import (
	"errors"
	"strconv"

	"essay-feed/helper"
	"essay-feed/logger"
	"essay-feed/models"
	"essay-feed/services"

	"github.com/gin-gonic/gin"
)

// sendServiceError maps service errors onto the response envelope.
func sendServiceError(h *helper.HTTPHelper, c *gin.Context, err error) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		h.SendFieldErrors(c, verrs)
	case errors.Is(err, services.ErrNotFound):
		h.SendNotFoundError(c, "Not found", h.EmptyJsonMap())
	case errors.Is(err, services.ErrForbidden):
		h.SendForbiddenError(c, "Insufficient permissions", h.EmptyJsonMap())
	case errors.Is(err, services.ErrInvalidCredentials):
		h.SendUnauthorizedError(c, err.Error(), h.EmptyJsonMap())
	default:
		logger.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		h.SendDatabaseError(c, "Internal error", h.EmptyJsonMap())
	}
}

func parseID(h *helper.HTTPHelper, c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		h.SendBadRequest(c, "Invalid "+name, h.EmptyJsonMap())
		return 0, false
	}
	return uint(id), true
}
