// Package routes defines HTTP routes for the site server.
package routes

import (
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/GunarsK-portfolio/artist-site/internal/handlers"
	"github.com/GunarsK-portfolio/artist-site/internal/metrics"
	"github.com/GunarsK-portfolio/artist-site/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups every handler the router serves.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Admin  *handlers.AdminHandler
	Public *handlers.PublicHandler
	Pages  *handlers.PageHandler
	Health *handlers.HealthHandler
}

// Options holds router wiring that is not a handler.
type Options struct {
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Gate           *middleware.Gate
	AllowedOrigins []string
	// AssetProxy serves AssetPrefixes when set.
	AssetProxy    *httputil.ReverseProxy
	AssetPrefixes []string
}

// Setup configures all HTTP routes for the application.
func Setup(router *gin.Engine, h Handlers, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router.Use(middleware.RequestLogger(logger), gin.Recovery())
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	router.Use(opts.Gate.Handler())
	router.SetHTMLTemplate(handlers.PageTemplates)

	csrf := middleware.CSRF(middleware.CSRFConfig{
		AllowedOrigins: opts.AllowedOrigins,
		Logger:         logger,
	})

	// Health check
	router.GET("/health", h.Health.Check)
	// Metrics
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Pages
	router.GET("/", h.Pages.Home)
	router.GET("/login", h.Pages.Login)
	router.GET("/admin", h.Pages.Admin)
	router.GET("/account", h.Pages.Account)
	router.GET("/reset-password", h.Pages.ResetPassword)
	router.GET(handlers.CodeErrorPath, h.Pages.CodeError)

	// Auth flow
	auth := router.Group("/auth")
	{
		auth.GET("/callback", h.Auth.Callback)
		auth.POST("/login", csrf, h.Auth.Login)
		auth.POST("/logout", csrf, h.Auth.Logout)
	}

	// Public API
	v1 := router.Group("/api/v1")
	{
		v1.GET("/events", h.Public.UpcomingEvents)
		v1.GET("/settings/main_title", h.Public.MainTitle)
	}

	// Admin API
	admin := v1.Group("/admin", csrf)
	{
		admin.GET("/admins", h.Admin.ListAdmins)
		admin.POST("/admins", h.Admin.CreateAdmin)
		admin.DELETE("/admins", h.Admin.DeleteAdmin)

		admin.GET("/settings", h.Admin.GetSetting)
		admin.PUT("/settings", h.Admin.UpdateSetting)

		admin.GET("/events", h.Admin.ListEvents)
		admin.POST("/events", h.Admin.CreateEvent)
		admin.PUT("/events/:id", h.Admin.UpdateEvent)
		admin.DELETE("/events/:id", h.Admin.DeleteEvent)
	}

	// Asset chunks through the resilience transport
	if opts.AssetProxy != nil {
		proxy := gin.WrapH(opts.AssetProxy)
		for _, prefix := range opts.AssetPrefixes {
			route := strings.TrimSuffix(prefix, "/") + "/*filepath"
			router.GET(route, proxy)
			router.HEAD(route, proxy)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusNotFound, "Not found")
	})
}
