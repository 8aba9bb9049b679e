// Package database is the PostgreSQL access layer for cases, statute tables
// and the reference table.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/jonesrussell/north-cloud/case-tracker/infrastructure/retry"
)

const (
	driverName  = "postgres"
	pingTimeout = 5 * time.Second
)

// connectRetry covers a database that is still starting next to the service.
var connectRetry = retry.Config{
	MaxAttempts:  5,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
}

// Config holds connection and pool settings.
type Config struct {
	DSN             string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewConnection opens a pool and pings it, retrying transient failures.
func NewConnection(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	db, openErr := sqlx.Open(driverName, cfg.DSN)
	if openErr != nil {
		return nil, fmt.Errorf("open database: %w", openErr)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingErr := retry.Do(ctx, connectRetry, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	return db, nil
}
