package database

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/codeready-toolchain/sqlbench/pkg/config"
)

// Config holds reference-database connection settings.
//
// Postgres fields are ignored for the in-process dialects (sqlite, duckdb),
// which use Path instead — ":memory:" keeps the reference data ephemeral.
type Config struct {
	Dialect config.Dialect

	// PostgreSQL connection settings
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// In-process engine file path (":memory:" for ephemeral)
	Path string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfigFromEnv loads reference-database configuration from environment
// variables with validation and sensible defaults.
func LoadConfigFromEnv(dialect config.Dialect) (Config, error) {
	port, err := strconv.Atoi(getEnvOrDefault("REFDB_PORT", "5432"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REFDB_PORT: %w", err)
	}

	maxOpen, _ := strconv.Atoi(getEnvOrDefault("REFDB_MAX_OPEN_CONNS", "10"))
	maxIdle, _ := strconv.Atoi(getEnvOrDefault("REFDB_MAX_IDLE_CONNS", "5"))

	maxLifetime, err := time.ParseDuration(getEnvOrDefault("REFDB_CONN_MAX_LIFETIME", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REFDB_CONN_MAX_LIFETIME: %w", err)
	}
	maxIdleTime, err := time.ParseDuration(getEnvOrDefault("REFDB_CONN_MAX_IDLE_TIME", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REFDB_CONN_MAX_IDLE_TIME: %w", err)
	}

	cfg := Config{
		Dialect:         dialect,
		Host:            getEnvOrDefault("REFDB_HOST", "localhost"),
		Port:            port,
		User:            getEnvOrDefault("REFDB_USER", "sqlbench"),
		Password:        os.Getenv("REFDB_PASSWORD"),
		Database:        getEnvOrDefault("REFDB_NAME", "sqlbench"),
		SSLMode:         getEnvOrDefault("REFDB_SSLMODE", "disable"),
		Path:            getEnvOrDefault("REFDB_PATH", ":memory:"),
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: maxLifetime,
		ConnMaxIdleTime: maxIdleTime,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for the selected dialect.
func (c Config) Validate() error {
	if !c.Dialect.IsValid() {
		return fmt.Errorf("%w: %q", config.ErrUnknownDialect, c.Dialect)
	}
	if c.Dialect == config.DialectPostgreSQL {
		if c.Host == "" {
			return fmt.Errorf("REFDB_HOST is required for postgresql")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("REFDB_PORT %d out of range", c.Port)
		}
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("REFDB_MAX_OPEN_CONNS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
