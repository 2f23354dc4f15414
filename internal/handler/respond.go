package handler

import (
	"errors"
	"net/http"

	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError translates service-layer error kinds into HTTP status codes.
// Unknown errors surface as a generic 500 so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, response.Error(err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, response.Error(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error("An internal error occurred"))
	}
}

// bindError reports a malformed or invalid request body
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error("Invalid request payload: "+err.Error()))
}

// actorID returns the authenticated user id placed in context by the auth middleware
func actorID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
