package bootstrap

import (
	"fmt"

	infraconfig "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/config"
)

// LoadConfig loads and validates the service configuration. An empty path
// falls back to CONFIG_PATH, then config.yml.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = infraconfig.GetConfigPath(config.DefaultPath)
	}

	cfg, loadErr := config.Load(path)
	if loadErr != nil {
		return nil, fmt.Errorf("load config: %w", loadErr)
	}

	return cfg, nil
}

// CreateLogger creates a structured logger for the service. outputPaths
// defaults to stdout.
func CreateLogger(cfg *config.Config, outputPaths ...string) (infralogger.Logger, error) {
	log, logErr := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development || cfg.Service.Debug,
		OutputPaths: outputPaths,
	})
	if logErr != nil {
		return nil, fmt.Errorf("create logger: %w", logErr)
	}

	return log.With(infralogger.String("service", cfg.Service.Name)), nil
}
