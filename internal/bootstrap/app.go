// Package bootstrap handles application initialization and lifecycle management
// for the case-tracker service and CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/case-tracker/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/config"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/database"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/marker"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/metrics"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/service"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/snapshot"
)

const warmerStopTimeout = 30 * time.Second

// App holds every long-lived component. The HTTP server and the CLI report
// commands share it.
type App struct {
	Config   *config.Config
	Logger   infralogger.Logger
	DB       *sqlx.DB
	Redis    *redis.Client
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Snapshots *snapshot.Controller
	Reports   *service.ReportService
	Cases     *service.CaseService
	Tables    *service.TableService
}

// Options controls NewApp. The CLI sends logs to stderr so report output on
// stdout stays clean.
type Options struct {
	ConfigPath     string
	LogOutputPaths []string
}

// NewApp loads configuration and connects every dependency. The caller must
// Close the returned App.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	cfg, configErr := LoadConfig(opts.ConfigPath)
	if configErr != nil {
		return nil, fmt.Errorf("config: %w", configErr)
	}

	log, logErr := CreateLogger(cfg, opts.LogOutputPaths...)
	if logErr != nil {
		return nil, fmt.Errorf("logger: %w", logErr)
	}

	db, dbErr := SetupDatabase(ctx, cfg)
	if dbErr != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("database: %w", dbErr)
	}
	log.Info("Database connection established")

	app := &App{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Redis:    SetupRedis(ctx, cfg, log),
		Registry: prometheus.NewRegistry(),
	}
	app.wire()

	return app, nil
}

func (a *App) wire() {
	cfg := a.Config

	a.Metrics = metrics.New(a.Registry)
	repo := database.NewRepository(a.DB, cfg.Snapshot.CasesTable, cfg.Tables.Allowed)
	classifier := marker.New(cfg.Markers.Red, cfg.Markers.Yellow)

	var cache snapshot.Cache
	if a.Redis != nil {
		cache = snapshot.NewRedisCache(a.Redis)
	}

	a.Snapshots = snapshot.NewController(repo, cache, classifier, a.Metrics, a.Logger, snapshot.Options{
		TTL:                cfg.Snapshot.TTL,
		Act:                cfg.Snapshot.StatuteAct,
		ReferenceTable:     cfg.Snapshot.ReferenceTable,
		SubUnitTable:       cfg.Snapshot.SubUnitTable,
		JurisdictionColumn: cfg.Snapshot.JurisdictionColumn,
		StageColumn:        cfg.Snapshot.StageColumn,
	})
	a.Reports = service.NewReportService(a.Snapshots, a.Metrics, a.Logger)
	a.Cases = service.NewCaseService(repo, a.Snapshots, classifier, a.Metrics, a.Logger)
	a.Tables = service.NewTableService(repo, a.Logger)
}

// Close releases connections and flushes the logger.
func (a *App) Close() {
	if a.Redis != nil {
		if closeErr := a.Redis.Close(); closeErr != nil {
			a.Logger.Error("Failed to close redis", infralogger.Error(closeErr))
		}
	}
	if closeErr := a.DB.Close(); closeErr != nil {
		a.Logger.Error("Failed to close database", infralogger.Error(closeErr))
	}
	_ = a.Logger.Sync()
}

// Serve runs the HTTP server and the snapshot warmer until ctx ends or a
// shutdown signal arrives.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.Config

	a.Logger.Info("Starting Case Tracker Service",
		infralogger.String("name", cfg.Service.Name),
		infralogger.String("version", cfg.Service.Version),
		infralogger.Int("port", cfg.Service.Port),
	)

	profiling.StartPprofServer(a.Logger)

	if schedule := cfg.Snapshot.RefreshSchedule; schedule != "" {
		warmer, warmerErr := snapshot.NewWarmer(a.Snapshots, schedule, a.Logger)
		if warmerErr != nil {
			return fmt.Errorf("snapshot warmer: %w", warmerErr)
		}
		warmer.Start()
		a.Logger.Info("Snapshot warmer started", infralogger.String("schedule", schedule))
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), warmerStopTimeout)
			defer cancel()
			warmer.Stop(stopCtx) //nolint:contextcheck // ctx may already be done
		}()
	}

	server := SetupHTTPServer(a)
	if runErr := server.Run(ctx); runErr != nil {
		a.Logger.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server: %w", runErr)
	}

	a.Logger.Info("Case Tracker Service stopped")
	return nil
}

// Start initializes and runs the case-tracker service.
func Start(ctx context.Context, configPath string) error {
	app, appErr := NewApp(ctx, Options{ConfigPath: configPath})
	if appErr != nil {
		return appErr
	}
	defer app.Close()

	return app.Serve(ctx)
}
