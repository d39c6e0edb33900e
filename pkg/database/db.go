package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aryan0dhankhar/leadtrack/internal/reliability/retry"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds database configuration
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConnectionPool manages database connections
type ConnectionPool struct {
	db     *sqlx.DB
	driver string
	logger *slog.Logger
}

// NewConnectionPool opens the database, waits for it to answer a ping and
// applies the schema.
func NewConnectionPool(ctx context.Context, config *Config, logger *slog.Logger) (*ConnectionPool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver := config.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	dsn := config.DSN
	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// one connection keeps ":memory:" databases shared and avoids SQLITE_BUSY on writes
		db.SetMaxOpenConns(1)
	} else if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(25)
	}

	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(5)
	}

	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else if driver != DriverSQLite {
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	_, err = retry.Do(ctx, retry.DefaultConfig(), logger, "database ping", func(ctx context.Context) (struct{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return struct{}{}, db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := &ConnectionPool{db: db, driver: driver, logger: logger}
	if err := pool.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database connected successfully", slog.String("driver", driver))
	return pool, nil
}

// DB returns the underlying connection
func (cp *ConnectionPool) DB() *sqlx.DB {
	return cp.db
}

// Driver returns the driver name the pool was opened with
func (cp *ConnectionPool) Driver() string {
	return cp.driver
}

// Close closes the database connection
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Health checks the database health
func (cp *ConnectionPool) Health(ctx context.Context) error {
	ctxTest, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return cp.db.PingContext(ctxTest)
}

// DefaultConfig returns the embedded development database
func DefaultConfig() *Config {
	return &Config{
		Driver: DriverSQLite,
		DSN:    "leadtrack.db",
	}
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = ":memory:"
	}
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_foreign_keys=on&_busy_timeout=5000"
}
