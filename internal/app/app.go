package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/infra/config"
	"github.com/staybook/payments/internal/utils/middleware"
)

const healthCheckTimeout = 2 * time.Second

// App represents the application.
type App struct {
	config  *config.Config
	deps    *Dependencies
	router  *gin.Engine
	logger  *zap.Logger
	cleanup func()
}

// LoadConfig loads application configuration.
func LoadConfig() (*config.Config, error) {
	return config.Load()
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := InitializeDependencies(cfg)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, deps, cleanup), nil
}

func newApp(cfg *config.Config, deps *Dependencies, cleanup func()) *App {
	if cleanup == nil {
		cleanup = func() {}
	}
	a := &App{
		config:  cfg,
		deps:    deps,
		logger:  deps.ZapLogger,
		cleanup: cleanup,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	a.router = a.setupRouter()
	a.registerRoutes()
	return a
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Server.Mode != "" {
		gin.SetMode(a.config.Server.Mode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger, "/health", "/metrics"))
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.Metrics(a.deps.Metrics))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = a.config.CORS.AllowedOrigins
	r.Use(middleware.CORS(corsCfg))

	r.GET("/health", a.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// registerRoutes registers the payment API and the provider webhook.
func (a *App) registerRoutes() {
	v1 := a.router.Group("/api/v1")
	v1.Use(middleware.Idempotency(a.deps.Redis, middleware.IdempotencyConfig{
		TTL:    a.config.RateLimit.IdempotencyTTL,
		Logger: a.logger,
	}))
	a.deps.PaymentHandler.RegisterRoutes(v1)
	a.deps.RefundHandler.RegisterRoutes(v1)

	// Webhooks are signed by the provider and must not be replayed from cache.
	a.deps.WebhookHandler.RegisterRoutes(a.router.Group(""))
}

func (a *App) health(c *gin.Context) {
	status := gin.H{"status": "ok"}
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if a.deps.DB != nil {
		if sqlDB, err := a.deps.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unavailable"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "ok"
		}
	}
	if a.deps.Redis != nil {
		if err := a.deps.Redis.Ping(ctx).Err(); err != nil {
			// Redis is optional; report it without failing the probe.
			status["redis"] = "unavailable"
		} else {
			status["redis"] = "ok"
		}
	}

	c.JSON(code, status)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases database and cache connections.
func (a *App) Stop() {
	a.cleanup()
	_ = a.logger.Sync()
}
