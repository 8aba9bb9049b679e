package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/config"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/database"
)

// SetupDatabase creates a database connection from config.
func SetupDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, connErr := database.NewConnection(ctx, database.Config{
		DSN:             cfg.Database.DSN(),
		MaxConnections:  cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnectionMaxLifetime,
	})
	if connErr != nil {
		return nil, fmt.Errorf("database connection: %w", connErr)
	}

	return db, nil
}

// SetupRedis connects the snapshot cache. It returns nil when Redis is
// disabled, and also when it is unreachable so the service can run on its
// in-process snapshot alone.
func SetupRedis(ctx context.Context, cfg *config.Config, log infralogger.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		log.Info("Redis snapshot cache disabled")
		return nil
	}

	client, clientErr := infraredis.NewClient(ctx, cfg.Redis.Conn)
	if clientErr != nil {
		log.Warn("Redis unavailable, continuing without snapshot cache",
			infralogger.String("address", cfg.Redis.Conn.Address),
			infralogger.Error(clientErr),
		)
		return nil
	}

	log.Info("Redis snapshot cache connected", infralogger.String("address", cfg.Redis.Conn.Address))
	return client
}
