package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/GunarsK-portfolio/artist-site/internal/middleware"
	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/gin-gonic/gin"
)

const defaultSiteTitle = "Artist"

// PageTemplates holds the placeholder pages rendered by PageHandler.
var PageTemplates = template.Must(template.New("pages").Parse(`
{{define "layout_start"}}<!doctype html><html><head><meta charset="utf-8"><title>{{.Title}}</title></head><body>{{end}}
{{define "layout_end"}}</body></html>{{end}}

{{define "home.html"}}{{template "layout_start" .}}<h1>{{.Title}}</h1>{{template "layout_end"}}{{end}}

{{define "login.html"}}{{template "layout_start" .}}<h1>Sign in</h1>
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
<form method="post" action="/auth/login">
<input type="hidden" name="next" value="{{.Next}}">
<label>Email <input type="email" name="email" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Sign in</button>
</form>{{template "layout_end"}}{{end}}

{{define "admin.html"}}{{template "layout_start" .}}<h1>Admin</h1><p>Signed in as {{.Email}}</p>
<form method="post" action="/auth/logout"><button type="submit">Sign out</button></form>{{template "layout_end"}}{{end}}

{{define "account.html"}}{{template "layout_start" .}}<h1>Account</h1><p>Signed in as {{.Email}}</p>
<form method="post" action="/auth/logout"><button type="submit">Sign out</button></form>{{template "layout_end"}}{{end}}

{{define "reset_password.html"}}{{template "layout_start" .}}<h1>Reset password</h1>{{template "layout_end"}}{{end}}

{{define "code_error.html"}}{{template "layout_start" .}}<h1>Sign-in link problem</h1><p>{{.Error}}</p>
<p><a href="/login">Try again</a></p>{{template "layout_end"}}{{end}}
`))

// PageData is passed to every page template.
type PageData struct {
	Title string
	Email string
	Error string
	Next  string
}

// PageHandler renders the placeholder pages the gate protects.
type PageHandler struct {
	adminService service.AdminService
}

// NewPageHandler creates a new PageHandler instance.
func NewPageHandler(adminService service.AdminService) *PageHandler {
	return &PageHandler{adminService: adminService}
}

// Home renders the landing page with the configured headline.
func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", PageData{Title: h.siteTitle(c)})
}

// Login renders the sign-in form.
func (h *PageHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", PageData{
		Title: "Sign in",
		Error: c.Query("error"),
		Next:  SanitizeNext(c.Query("next")),
	})
}

// Admin renders the admin landing page.
func (h *PageHandler) Admin(c *gin.Context) {
	c.HTML(http.StatusOK, "admin.html", PageData{Title: "Admin", Email: principalEmail(c)})
}

// Account renders the account landing page.
func (h *PageHandler) Account(c *gin.Context) {
	c.HTML(http.StatusOK, "account.html", PageData{Title: "Account", Email: principalEmail(c)})
}

// ResetPassword renders the password reset landing page.
func (h *PageHandler) ResetPassword(c *gin.Context) {
	c.HTML(http.StatusOK, "reset_password.html", PageData{Title: "Reset password"})
}

// CodeError renders the auth callback failure page.
func (h *PageHandler) CodeError(c *gin.Context) {
	c.HTML(http.StatusOK, "code_error.html", PageData{Title: "Sign-in error", Error: c.Query("error")})
}

func (h *PageHandler) siteTitle(c *gin.Context) string {
	value, err := h.adminService.GetSetting(c.Request.Context(), models.SettingMainTitle)
	if err != nil || value == nil {
		return defaultSiteTitle
	}
	var title string
	if err := json.Unmarshal(value.Value, &title); err != nil || title == "" {
		return defaultSiteTitle
	}
	return title
}

func principalEmail(c *gin.Context) string {
	if principal, ok := middleware.PrincipalFrom(c); ok {
		return principal.Email
	}
	return ""
}
