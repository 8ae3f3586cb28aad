package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/artist-site/internal/cookies"
	"github.com/GunarsK-portfolio/artist-site/internal/metrics"
	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/repository"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PrincipalKey is the gin context key holding the resolved *models.Principal.
const PrincipalKey = "principal"

// SessionResolver resolves the caller from its session tokens.
type SessionResolver interface {
	GetUser(ctx context.Context, tokens service.SessionTokens) (*service.UserResult, error)
}

// GateConfig holds configuration for the access gate.
type GateConfig struct {
	// ProtectedPrefixes require an authenticated principal.
	ProtectedPrefixes []string
	// AdminPrefix additionally requires the admin role. It should also be
	// listed in ProtectedPrefixes.
	AdminPrefix string
	// LoginPath receives unauthenticated callers.
	LoginPath string
	// NextParam carries the original path to the login page.
	NextParam string
	// ForbiddenPath receives authenticated callers without the admin role.
	ForbiddenPath string
	// Timeout bounds each collaborator call.
	Timeout time.Duration
}

// Gate short-circuits unauthenticated or unauthorized page requests.
type Gate struct {
	config   GateConfig
	sessions SessionResolver
	profiles service.ProfileLookup
	cookies  *cookies.Helper
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewGate creates a new access gate.
func NewGate(config GateConfig, sessions SessionResolver, profiles service.ProfileLookup, cookieHelper *cookies.Helper, logger *zap.Logger, m *metrics.Metrics) *Gate {
	if config.LoginPath == "" {
		config.LoginPath = "/login"
	}
	if config.NextParam == "" {
		config.NextParam = "next"
	}
	if config.ForbiddenPath == "" {
		config.ForbiddenPath = "/"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		config:   config,
		sessions: sessions,
		profiles: profiles,
		cookies:  cookieHelper,
		logger:   logger,
		metrics:  m,
	}
}

// Handler returns the gin middleware.
//
// Requests outside the protected prefixes never touch the session service.
// Collaborator errors fail closed: a session error is treated as
// unauthenticated and a role lookup error as forbidden.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !g.isProtected(path) {
			g.metrics.GateDecision(metrics.DecisionPassThrough)
			c.Next()
			return
		}

		result, err := g.getUser(c)
		if err != nil {
			g.logger.Warn("session resolution failed, treating as unauthenticated",
				zap.String("path", path), zap.Error(err))
		}
		if err != nil || result.Principal == nil {
			g.redirectToLogin(c)
			return
		}

		// Persist a rotated token pair before any redirect or handler runs.
		if result.Refreshed != nil {
			g.cookies.SetSession(c, result.Refreshed)
		}

		principal := result.Principal
		if hasPrefix(path, g.config.AdminPrefix) && !g.isAdmin(c, principal) {
			g.metrics.GateDecision(metrics.DecisionForbidden)
			c.Redirect(http.StatusFound, g.config.ForbiddenPath)
			c.Abort()
			return
		}

		g.metrics.GateDecision(metrics.DecisionAllow)
		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

func (g *Gate) getUser(c *gin.Context) (*service.UserResult, error) {
	ctx, cancel := service.WithTimeout(c.Request.Context(), g.config.Timeout)
	defer cancel()
	return g.sessions.GetUser(ctx, g.cookies.Tokens(c.Request))
}

func (g *Gate) isAdmin(c *gin.Context, principal *models.Principal) bool {
	ctx, cancel := service.WithTimeout(c.Request.Context(), g.config.Timeout)
	defer cancel()

	profile, err := g.profiles.FindByID(ctx, principal.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			g.logger.Warn("role lookup failed, treating as forbidden",
				zap.String("user_id", principal.ID), zap.Error(err))
		}
		return false
	}
	return profile.IsAdmin()
}

func (g *Gate) redirectToLogin(c *gin.Context) {
	g.metrics.GateDecision(metrics.DecisionLogin)
	query := url.Values{g.config.NextParam: {c.Request.URL.RequestURI()}}
	c.Redirect(http.StatusFound, g.config.LoginPath+"?"+query.Encode())
	c.Abort()
}

func (g *Gate) isProtected(path string) bool {
	for _, prefix := range g.config.ProtectedPrefixes {
		if hasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// hasPrefix matches the prefix itself or the prefix followed by a path
// segment, so "/administrator" is not under "/admin".
func hasPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// PrincipalFrom returns the principal stored by the gate, if any.
func PrincipalFrom(c *gin.Context) (*models.Principal, bool) {
	value, ok := c.Get(PrincipalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*models.Principal)
	return principal, ok
}
