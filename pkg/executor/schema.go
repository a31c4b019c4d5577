package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/codeready-toolchain/sqlbench/pkg/config"
	"github.com/codeready-toolchain/sqlbench/pkg/database"
)

// ColumnInfo describes one column of a reference table.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableSchema describes one user-visible reference table.
type TableSchema struct {
	Columns []ColumnInfo `json:"columns"`
}

// schemaCache memoizes the reference schema snapshot. Safe for concurrent
// readers; invalidate forces the next read to recompute.
type schemaCache struct {
	client *database.Client

	mu     sync.Mutex
	schema map[string]TableSchema
}

func newSchemaCache(client *database.Client) *schemaCache {
	return &schemaCache{client: client}
}

func (c *schemaCache) get(ctx context.Context) (map[string]TableSchema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schema != nil {
		return c.schema, nil
	}

	schema, err := introspect(ctx, c.client)
	if err != nil {
		return nil, err
	}
	c.schema = schema
	return schema, nil
}

func (c *schemaCache) invalidate() {
	c.mu.Lock()
	c.schema = nil
	c.mu.Unlock()
}

// introspect queries the engine catalog for all user-visible tables.
func introspect(ctx context.Context, client *database.Client) (map[string]TableSchema, error) {
	switch client.Dialect() {
	case config.DialectSQLite:
		return introspectSQLite(ctx, client)
	case config.DialectPostgreSQL, config.DialectDuckDB:
		// Both expose information_schema with compatible shapes.
		return introspectInformationSchema(ctx, client)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDialect, client.Dialect())
	}
}

func introspectSQLite(ctx context.Context, client *database.Client) (map[string]TableSchema, error) {
	db := client.DB()
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	schema := make(map[string]TableSchema, len(tables))
	for _, table := range tables {
		colRows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, table))
		if err != nil {
			return nil, fmt.Errorf("table_info %s: %w", table, err)
		}
		var cols []ColumnInfo
		for colRows.Next() {
			var (
				cid        int
				name, typ  string
				notNull    int
				defaultVal any
				pk         int
			)
			if err := colRows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
				colRows.Close()
				return nil, fmt.Errorf("scan column of %s: %w", table, err)
			}
			cols = append(cols, ColumnInfo{Name: name, Type: typ})
		}
		if err := colRows.Err(); err != nil {
			colRows.Close()
			return nil, err
		}
		colRows.Close()
		schema[table] = TableSchema{Columns: cols}
	}
	return schema, nil
}

func introspectInformationSchema(ctx context.Context, client *database.Client) (map[string]TableSchema, error) {
	query := `SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_name, ordinal_position`
	if client.Dialect() == config.DialectDuckDB {
		query = `SELECT table_name, column_name, data_type
			FROM information_schema.columns
			ORDER BY table_name, ordinal_position`
	}

	rows, err := client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query information_schema: %w", err)
	}
	defer rows.Close()

	schema := make(map[string]TableSchema)
	for rows.Next() {
		var table, column, typ string
		if err := rows.Scan(&table, &column, &typ); err != nil {
			return nil, fmt.Errorf("scan schema row: %w", err)
		}
		ts := schema[table]
		ts.Columns = append(ts.Columns, ColumnInfo{Name: column, Type: typ})
		schema[table] = ts
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return schema, nil
}
