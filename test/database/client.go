// Package database provides PostgreSQL test helpers backed by
// testcontainers for adapter integration tests.
package database

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/codeready-toolchain/sqlbench/pkg/config"
	sqldb "github.com/codeready-toolchain/sqlbench/pkg/database"
)

// NewTestClient creates a PostgreSQL reference-database client for tests.
// In CI (when CI_DATABASE_URL is set): connects to an external PostgreSQL
// service container. In local dev: spins up a testcontainer. The container
// and connection are cleaned up when the test ends.
func NewTestClient(t *testing.T) *sqldb.Client {
	t.Helper()
	ctx := context.Background()

	connStr := os.Getenv("CI_DATABASE_URL")
	if connStr == "" {
		t.Log("Using testcontainers for PostgreSQL")
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("sqlbench_test"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		require.NoError(t, err)

		t.Cleanup(func() {
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				t.Logf("failed to terminate container: %v", err)
			}
		})

		connStr, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	cfg, err := configFromURL(connStr)
	require.NoError(t, err)

	client, err := sqldb.NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// configFromURL converts a postgres:// connection URL into a database.Config.
func configFromURL(connStr string) (sqldb.Config, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return sqldb.Config{}, err
	}

	port := 5432
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return sqldb.Config{}, err
		}
	}
	password, _ := u.User.Password()

	return sqldb.Config{
		Dialect:      config.DialectPostgreSQL,
		Host:         u.Hostname(),
		Port:         port,
		User:         u.User.Username(),
		Password:     password,
		Database:     strings.TrimPrefix(u.Path, "/"),
		SSLMode:      u.Query().Get("sslmode"),
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}, nil
}
