package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/GunarsK-portfolio/artist-site/internal/cookies"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Paths used by the auth flow redirects.
const (
	CodeErrorPath     = "/auth/auth-code-error"
	ResetPasswordPath = "/reset-password"
	CallbackPath      = "/auth/callback"
)

// Callback error codes carried in the ?error= parameter.
const (
	CodeErrorMissing  = "missing_code"
	CodeErrorInvalid  = "invalid_code"
	CodeErrorExchange = "exchange_failed"
)

// AuthHandler handles the browser-facing auth flow.
type AuthHandler struct {
	sessions  service.SessionService
	cookies   *cookies.Helper
	loginPath string
	logger    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(sessions service.SessionService, cookieHelper *cookies.Helper, loginPath string, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loginPath == "" {
		loginPath = "/login"
	}
	return &AuthHandler{
		sessions:  sessions,
		cookies:   cookieHelper,
		loginPath: loginPath,
		logger:    logger,
	}
}

// Callback godoc
// @Summary Auth callback
// @Description Exchange a one-time authorization code for a session and redirect.
// @Tags auth
// @Param code query string true "Authorization code"
// @Param next query string false "Return path"
// @Param type query string false "Flow type, recovery redirects to the password reset page"
// @Success 302
// @Router /auth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.redirectCodeError(c, CodeErrorMissing)
		return
	}

	session, err := h.sessions.ExchangeCodeForSession(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			h.redirectCodeError(c, CodeErrorInvalid)
			return
		}
		h.logger.Error("code exchange failed", zap.Error(err))
		h.redirectCodeError(c, CodeErrorExchange)
		return
	}

	h.cookies.SetSession(c, session)

	if c.Query("type") == "recovery" {
		c.Redirect(http.StatusFound, ResetPasswordPath)
		return
	}
	c.Redirect(http.StatusFound, SanitizeNext(c.Query("next")))
}

// Login godoc
// @Summary Sign in
// @Description Verify credentials and continue through the auth callback.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param next formData string false "Return path"
// @Success 303
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	next := SanitizeNext(c.PostForm("next"))
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	password := c.PostForm("password")

	if email == "" || password == "" {
		h.redirectLoginError(c, "invalid_credentials", next)
		return
	}

	code, err := h.sessions.SignIn(c.Request.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.redirectLoginError(c, "invalid_credentials", next)
			return
		}
		h.logger.Error("sign in failed", zap.Error(err))
		h.redirectLoginError(c, "unavailable", next)
		return
	}

	query := url.Values{"code": {code}, "next": {next}}
	c.Redirect(http.StatusSeeOther, CallbackPath+"?"+query.Encode())
}

// Logout godoc
// @Summary Sign out
// @Description Revoke the refresh token, clear session cookies and return home.
// @Tags auth
// @Success 303
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.SignOut(c.Request.Context(), h.cookies.Tokens(c.Request)); err != nil {
		h.logger.Warn("failed to revoke refresh token", zap.Error(err))
	}
	h.cookies.Clear(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) redirectCodeError(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, CodeErrorPath+"?"+url.Values{"error": {code}}.Encode())
}

func (h *AuthHandler) redirectLoginError(c *gin.Context, code, next string) {
	query := url.Values{"error": {code}, "next": {next}}
	c.Redirect(http.StatusSeeOther, h.loginPath+"?"+query.Encode())
}

// SanitizeNext keeps only same-origin absolute paths. Anything else,
// including protocol-relative URLs, becomes "/". Browsers drop tab and
// newline characters and treat backslashes as slashes, so any control
// character or backslash is rejected outright.
func SanitizeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	if strings.ContainsFunc(next, func(r rune) bool { return r < 0x20 || r == 0x7f || r == '\\' }) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
