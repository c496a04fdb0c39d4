package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"dinefind/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const pingTimeout = 5 * time.Second

// Connect opens a database handle for driver and uri. Postgres handles are
// tuned for serverless deployments like Neon by not holding idle
// connections. A failed ping is logged but not fatal, the first query will
// surface the error.
func Connect(ctx context.Context, driver, uri string, log logger.Logger) (*sql.DB, error) {
	if uri == "" {
		return nil, fmt.Errorf("%s connection uri not set", driver)
	}

	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, uri)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverPostgres:
		// Disable idle connections to avoid holding on to suspended compute
		db.SetMaxIdleConns(0)
		db.SetMaxOpenConns(10)
	case DriverSQLite:
		// an in-memory database lives and dies with its only connection
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Warn("database ping failed, proceeding carefully", zap.String("driver", driver), zap.Error(err))
	} else {
		log.Info("connected to database", zap.String("driver", driver))
	}

	return db, nil
}
