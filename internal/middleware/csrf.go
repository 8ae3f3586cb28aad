// Package middleware provides HTTP middleware for the site server.
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// AllowedOrigins is a list of allowed origins for CSRF validation.
	AllowedOrigins []string
	// Logger receives rejected requests. Optional.
	Logger *zap.Logger
}

// CSRF returns middleware that validates Origin/Referer headers on
// state-changing requests. Session cookies are sent automatically by the
// browser, so the admin API and the auth forms need this check.
func CSRF(config CSRFConfig) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(config.AllowedOrigins))
	for _, origin := range config.AllowedOrigins {
		allowed[normalizeOrigin(origin)] = struct{}{}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reject := func(c *gin.Context, reason string) {
		logger.Warn("csrf validation failed",
			zap.String("reason", reason),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "CSRF validation failed: " + reason,
		})
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		// Origin first, Referer as fallback.
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[normalizeOrigin(origin)]; !ok {
				reject(c, "invalid origin")
				return
			}
			c.Next()
			return
		}

		if referer := c.GetHeader("Referer"); referer != "" {
			if _, ok := allowed[normalizeOrigin(extractOrigin(referer))]; !ok {
				reject(c, "invalid referer")
				return
			}
			c.Next()
			return
		}

		reject(c, "missing origin")
	}
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(origin), "/")
}

// extractOrigin extracts the origin (scheme://host:port) from a URL.
func extractOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
