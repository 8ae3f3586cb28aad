// Package handlers contains HTTP request handlers for the site server.
package handlers

import (
	"errors"
	"net/http"

	"github.com/GunarsK-portfolio/artist-site/internal/cookies"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by operations without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondError writes {"error": message} with the given status.
func RespondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// LogAndRespondError logs err and surfaces its message verbatim.
func LogAndRespondError(c *gin.Context, logger *zap.Logger, status int, err error) {
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	_ = c.Error(err)
	RespondError(c, status, err.Error())
}

// respondServiceError maps the service error taxonomy onto status codes.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnsupported):
		RespondError(c, http.StatusNotImplemented, err.Error())
	default:
		LogAndRespondError(c, logger, http.StatusInternalServerError, err)
	}
}

// adminGuard runs the authorization preamble shared by every admin endpoint.
type adminGuard struct {
	access  service.AccessService
	cookies *cookies.Helper
	logger  *zap.Logger
}

// require writes 401 or 403 and returns false unless the caller is an admin.
// A rotated token pair is persisted whatever the outcome.
func (g *adminGuard) require(c *gin.Context) (*service.Access, bool) {
	access, err := g.access.RequireAdmin(c.Request.Context(), g.cookies.Tokens(c.Request))
	if access != nil && access.Refreshed != nil {
		g.cookies.SetSession(c, access.Refreshed)
	}

	switch {
	case err == nil:
		return access, true
	case errors.Is(err, service.ErrUnauthenticated):
		g.logCause(c, err, service.ErrUnauthenticated)
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
	default:
		g.logCause(c, err, service.ErrForbidden)
		RespondError(c, http.StatusForbidden, "Forbidden")
	}
	return nil, false
}

// logCause logs collaborator failures hidden behind a fail-closed denial.
func (g *adminGuard) logCause(c *gin.Context, err, sentinel error) {
	if err.Error() == sentinel.Error() {
		return
	}
	g.logger.Warn("authorization denied after collaborator error",
		zap.String("path", c.Request.URL.Path), zap.Error(err))
}
