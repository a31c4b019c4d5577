// Package database provides the reference-database client used to execute
// candidate SQL, plus seed migrations and health checks. The client speaks
// database/sql so the three supported dialects share one code path.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"    // Register pgx driver for database/sql
	_ "github.com/marcboeker/go-duckdb"   // Register duckdb driver
	_ "modernc.org/sqlite"                // Register sqlite driver

	"github.com/codeready-toolchain/sqlbench/pkg/config"
)

// Client wraps the reference database connection for one dialect.
type Client struct {
	db      *sql.DB
	dialect config.Dialect
}

// DB returns the underlying connection for direct queries and health checks.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the SQL dialect this client speaks.
func (c *Client) Dialect() config.Dialect {
	return c.dialect
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// NewClientFromDB wraps an existing connection (useful for testing).
func NewClientFromDB(db *sql.DB, dialect config.Dialect) *Client {
	return &Client{db: db, dialect: dialect}
}

// NewClient opens the reference database for the configured dialect with
// connection pooling, and verifies connectivity.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	driver, dsn, err := cfg.driverAndDSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Dialect, err)
	}

	if cfg.Dialect != config.DialectPostgreSQL && cfg.Path == ":memory:" {
		// An in-memory database exists per connection; more than one pooled
		// connection would see different (empty) databases, and an idle
		// timeout would silently drop the data.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Dialect, err)
	}

	return &Client{db: db, dialect: cfg.Dialect}, nil
}

func (cfg Config) driverAndDSN() (driver, dsn string, err error) {
	switch cfg.Dialect {
	case config.DialectPostgreSQL:
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
		)
		return "pgx", dsn, nil
	case config.DialectSQLite:
		return "sqlite", cfg.Path, nil
	case config.DialectDuckDB:
		path := cfg.Path
		if path == ":memory:" {
			// duckdb opens an in-memory database on an empty DSN
			path = ""
		}
		return "duckdb", path, nil
	default:
		return "", "", fmt.Errorf("%w: %q", config.ErrUnknownDialect, cfg.Dialect)
	}
}
