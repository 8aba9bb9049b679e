package bootstrap

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/gin"
	inframetrics "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/api"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/metrics"
)

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	healthCheckTimeout  = 2 * time.Second
)

// SetupHTTPServer creates the HTTP server with all handlers wired.
func SetupHTTPServer(app *App) *infragin.Server {
	cfg := app.Config

	handlers := api.Handlers{
		Reports:  api.NewReportHandler(app.Reports),
		Cases:    api.NewCaseHandler(app.Cases),
		Tables:   api.NewTableHandler(app.Tables),
		Snapshot: api.NewSnapshotHandler(app.Snapshots),
	}
	limiter := api.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, app.Metrics)
	httpMetrics := inframetrics.NewHTTPMetrics(app.Registry, metrics.Namespace)

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(app.Logger).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout).
		WithCORS(infragin.CORSConfig{
			Enabled:        cfg.CORS.Enabled,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}).
		WithMiddleware(httpMetrics.Middleware()).
		WithDatabaseHealthCheck(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()
			return app.DB.PingContext(ctx)
		})

	if app.Redis != nil {
		builder = builder.WithRedisHealthCheck(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()
			return app.Redis.Ping(ctx).Err()
		})
	}

	return builder.
		WithRoutes(func(router *gin.Engine) {
			api.SetupRoutes(router, handlers, cfg.Auth.JWTSecret, limiter, metrics.Handler(app.Registry))
		}).
		Build()
}
