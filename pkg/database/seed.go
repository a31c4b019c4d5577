package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/codeready-toolchain/sqlbench/pkg/config"
)

//go:embed seed
var seedFS embed.FS

// seedVersion maps a schema selector to the migration version that provides
// it. Enterprise is a superset of basic.
func seedVersion(schema config.SchemaType) uint {
	if schema == config.SchemaEnterprise {
		return 2
	}
	return 1
}

// Seed provisions the sample reference schema and data for the given schema
// selector. Postgres goes through golang-migrate so re-seeding an existing
// database is a no-op; the in-process engines (sqlite, duckdb) start empty
// every run and execute the seed files directly — migrate has no driver for
// either under a cgo-free build.
func (c *Client) Seed(ctx context.Context, schema config.SchemaType) error {
	if !schema.IsValid() {
		return fmt.Errorf("%w: %q", config.ErrUnknownSchema, schema)
	}

	if c.dialect == config.DialectPostgreSQL {
		return c.seedPostgres(schema)
	}
	return c.seedDirect(ctx, schema)
}

func (c *Client) seedPostgres(schema config.SchemaType) error {
	source, err := iofs.New(seedFS, "seed")
	if err != nil {
		return fmt.Errorf("open seed source: %w", err)
	}

	driver, err := migratepg.WithInstance(c.db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Migrate(seedVersion(schema)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply seed migrations: %w", err)
	}

	slog.Info("Reference database seeded", "dialect", c.dialect, "schema", schema)
	return nil
}

func (c *Client) seedDirect(ctx context.Context, schema config.SchemaType) error {
	files, err := upFilesThrough(seedVersion(schema))
	if err != nil {
		return err
	}

	for _, name := range files {
		data, err := fs.ReadFile(seedFS, "seed/"+name)
		if err != nil {
			return fmt.Errorf("read seed file %s: %w", name, err)
		}
		for _, stmt := range splitStatements(string(data)) {
			if _, err := c.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("seed statement in %s: %w", name, err)
			}
		}
	}

	slog.Info("Reference database seeded", "dialect", c.dialect, "schema", schema)
	return nil
}

// upFilesThrough lists the .up.sql seed files up to and including the target
// version, in version order.
func upFilesThrough(version uint) ([]string, error) {
	entries, err := fs.ReadDir(seedFS, "seed")
	if err != nil {
		return nil, fmt.Errorf("list seed files: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		var v uint
		if _, err := fmt.Sscanf(name, "%06d_", &v); err != nil {
			return nil, fmt.Errorf("unversioned seed file %s", name)
		}
		if v <= version {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

// splitStatements breaks a seed file into individual statements. Seed files
// contain no string literals with semicolons, so a plain split suffices.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
