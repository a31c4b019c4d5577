package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/sqlbench/pkg/config"
	"github.com/codeready-toolchain/sqlbench/pkg/executor"
)

func TestPostgresAdapterIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	ctx := context.Background()

	client := NewTestClient(t)
	require.NoError(t, client.Seed(ctx, config.SchemaEnterprise))

	// Re-seeding is a no-op thanks to versioned migrations.
	require.NoError(t, client.Seed(ctx, config.SchemaEnterprise))

	adapter := executor.New(client)

	t.Run("schema introspection", func(t *testing.T) {
		schema, err := adapter.Schema(ctx)
		require.NoError(t, err)
		assert.Contains(t, schema, "customers")
		assert.Contains(t, schema, "orders")
		assert.Contains(t, schema, "products")
		assert.Contains(t, schema, "order_items")
	})

	t.Run("execute select", func(t *testing.T) {
		result := adapter.Execute(ctx, "SELECT name FROM customers ORDER BY id")
		require.True(t, result.Success, "error: %s", result.Error)
		assert.Equal(t, 5, result.RowsReturned)
		assert.Equal(t, "Alice Johnson", result.Rows[0]["name"])
	})

	t.Run("join across seeded tables", func(t *testing.T) {
		result := adapter.Execute(ctx, `
			SELECT c.name, SUM(oi.quantity * oi.unit_price) AS order_total
			FROM customers c
			JOIN orders o ON o.customer_id = c.id
			JOIN order_items oi ON oi.order_id = o.id
			GROUP BY c.name
			ORDER BY c.name`)
		require.True(t, result.Success, "error: %s", result.Error)
		assert.Greater(t, result.RowsReturned, 0)
	})

	t.Run("phantom table surfaces postgres error", func(t *testing.T) {
		result := adapter.Execute(ctx, "SELECT * FROM customerz")
		assert.False(t, result.Success)
		assert.Contains(t, result.PhantomTables, "customerz")
		assert.Contains(t, result.Error, "customerz")
	})
}
