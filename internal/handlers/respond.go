package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/travelease/internal/middleware"
	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/services"
)

// respondError writes the 4xx response for a known service error. Anything
// else is handed to the ErrorHandler middleware as a 500.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ValidationErrorResponse(verr.Message, verr.Fields))
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse(clientMessage(err, services.ErrValidation)))
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("Invalid email or password"))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse(clientMessage(err, services.ErrNotFound)))
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, models.ErrorResponse(clientMessage(err, services.ErrConflict)))
	default:
		_ = c.Error(err)
	}
}

// clientMessage drops the "sentinel: " prefix added by fmt.Errorf("%w: ...").
func clientMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ValidationErrorResponse("invalid request payload", []string{err.Error()}))
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid "+label+" id"))
		return 0, false
	}
	return id, true
}

// currentUserID reads the authenticated user from the claims set by
// AuthMiddleware.
func currentUserID(c *gin.Context) (int64, bool) {
	claims, ok := middleware.CurrentUser(c)
	if !ok || claims.UserID <= 0 {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("Access token required"))
		return 0, false
	}
	return claims.UserID, true
}
