// Package cookies reads and writes the session cookies.
package cookies

import (
	"net/http"
	"time"

	"github.com/GunarsK-portfolio/artist-site/internal/config"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	// Cookie names
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Helper manages authentication cookies.
type Helper struct {
	config config.CookieConfig
}

// NewHelper creates a new cookie helper with the given configuration.
func NewHelper(cfg config.CookieConfig) *Helper {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return &Helper{config: cfg}
}

// Tokens reads the session token pair from the request.
func (h *Helper) Tokens(r *http.Request) service.SessionTokens {
	return service.SessionTokens{
		AccessToken:  cookieValue(r, AccessTokenCookie),
		RefreshToken: cookieValue(r, RefreshTokenCookie),
	}
}

// SessionCookies builds the cookies that persist a session.
func (h *Helper) SessionCookies(session *service.Session) []*http.Cookie {
	return []*http.Cookie{
		h.build(AccessTokenCookie, session.AccessToken, session.AccessExpiry),
		h.build(RefreshTokenCookie, session.RefreshToken, session.RefreshExpiry),
	}
}

// ClearCookies builds the cookies that remove a session.
func (h *Helper) ClearCookies() []*http.Cookie {
	return []*http.Cookie{
		h.build(AccessTokenCookie, "", -1),
		h.build(RefreshTokenCookie, "", -1),
	}
}

// SetSession writes a session onto both the response and the in-flight request.
func (h *Helper) SetSession(c *gin.Context, session *service.Session) {
	if session == nil {
		return
	}
	Apply(c, h.SessionCookies(session))
}

// Clear removes the session cookies from both the response and the in-flight request.
func (h *Helper) Clear(c *gin.Context) {
	Apply(c, h.ClearCookies())
}

// Apply writes cookie mutations onto the outbound response, so the browser
// persists them, and onto the inbound request, so handlers later in the same
// chain observe them. Expired cookies are removed from the request.
func Apply(c *gin.Context, cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}

	for _, cookie := range cookies {
		http.SetCookie(c.Writer, cookie)
	}

	if c.Request == nil {
		return
	}

	replaced := make(map[string]bool, len(cookies))
	for _, cookie := range cookies {
		replaced[cookie.Name] = true
	}

	existing := c.Request.Cookies()
	c.Request.Header.Del("Cookie")
	for _, cookie := range existing {
		if !replaced[cookie.Name] {
			c.Request.AddCookie(cookie)
		}
	}
	for _, cookie := range cookies {
		if cookie.MaxAge >= 0 && cookie.Value != "" {
			c.Request.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
		}
	}
}

func (h *Helper) build(name, value string, expiry time.Duration) *http.Cookie {
	maxAge := -1
	if expiry >= 0 {
		maxAge = int(expiry.Seconds())
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     h.config.Path,
		Domain:   h.config.Domain,
		MaxAge:   maxAge,
		Secure:   h.config.Secure,
		HttpOnly: true, // always true for auth cookies
		SameSite: h.config.SameSite,
	}
}

func cookieValue(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
