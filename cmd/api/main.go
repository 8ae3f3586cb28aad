// Package main is the entry point for the artist site server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GunarsK-portfolio/artist-site/internal/config"
	"github.com/GunarsK-portfolio/artist-site/internal/cookies"
	"github.com/GunarsK-portfolio/artist-site/internal/handlers"
	"github.com/GunarsK-portfolio/artist-site/internal/logger"
	"github.com/GunarsK-portfolio/artist-site/internal/metrics"
	"github.com/GunarsK-portfolio/artist-site/internal/middleware"
	"github.com/GunarsK-portfolio/artist-site/internal/repository"
	"github.com/GunarsK-portfolio/artist-site/internal/resilience"
	"github.com/GunarsK-portfolio/artist-site/internal/routes"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/GunarsK-portfolio/artist-site/pkg/database"
	"github.com/GunarsK-portfolio/artist-site/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	// Initialize Redis
	redisClient, err := redis.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Initialize services
	jwtService, err := service.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	if err != nil {
		return err
	}
	sessionService := service.NewSessionService(userRepo, jwtService, redisClient, cfg.AuthCodeTTL)
	accessService := service.NewAccessService(sessionService, profileRepo, cfg.CollaboratorTimeout)
	adminService := service.NewAdminService(profileRepo, settingRepo, eventRepo, cfg.CollaboratorTimeout)

	// Initialize handlers
	cookieHelper := cookies.NewHelper(cfg.Cookie)
	h := routes.Handlers{
		Auth:   handlers.NewAuthHandler(sessionService, cookieHelper, cfg.LoginPath, log),
		Admin:  handlers.NewAdminHandler(adminService, accessService, cookieHelper, log),
		Public: handlers.NewPublicHandler(adminService, log),
		Pages:  handlers.NewPageHandler(adminService),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"postgres": sqlDB.PingContext,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}, 2*time.Second, log),
	}

	gate := middleware.NewGate(middleware.GateConfig{
		ProtectedPrefixes: cfg.ProtectedPrefixes,
		AdminPrefix:       cfg.AdminPrefix,
		LoginPath:         cfg.LoginPath,
		Timeout:           cfg.CollaboratorTimeout,
	}, sessionService, profileRepo, cookieHelper, log, m)

	var assetProxy *httputil.ReverseProxy
	if cfg.AssetOrigin != "" {
		transport := resilience.NewTransport(nil, cfg.AssetPrefixes, cfg.AssetRetryDelay, m, log)
		assetProxy, err = resilience.NewAssetProxy(cfg.AssetOrigin, transport, log)
		if err != nil {
			return err
		}
	}

	// Setup router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.Setup(router, h, routes.Options{
		Logger:         log,
		Metrics:        m,
		Gatherer:       registry,
		Gate:           gate,
		AllowedOrigins: cfg.AllowedOrigins,
		AssetProxy:     assetProxy,
		AssetPrefixes:  cfg.AssetPrefixes,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting site server", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
