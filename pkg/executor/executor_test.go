package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/sqlbench/pkg/config"
	"github.com/codeready-toolchain/sqlbench/pkg/database"
)

// newTestAdapter opens an in-memory sqlite reference database seeded with the
// basic sample schema.
func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	ctx := context.Background()

	client, err := database.NewClient(ctx, database.Config{
		Dialect:      config.DialectSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Seed(ctx, config.SchemaBasic))
	return New(client)
}

func TestExecuteSelect(t *testing.T) {
	adapter := newTestAdapter(t)

	result := adapter.Execute(context.Background(), "SELECT id, name FROM customers WHERE id = 1")

	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, 1, result.RowsReturned)
	assert.Equal(t, []string{"id", "name"}, result.Columns)
	assert.Equal(t, "Alice Johnson", result.Rows[0]["name"])
	assert.Equal(t, "SELECT", result.QueryType)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.PhantomTables)
	assert.Empty(t, result.PhantomColumns)
	assert.GreaterOrEqual(t, result.ExecutionTimeMs, 0.0)
	assert.Contains(t, result.Summary, "Returned 1 rows")
}

func TestExecutePhantomTable(t *testing.T) {
	adapter := newTestAdapter(t)

	result := adapter.Execute(context.Background(), "SELECT * FROM customerz")

	assert.False(t, result.Success)
	assert.Contains(t, result.PhantomTables, "customerz")
	assert.False(t, result.IsValid)
	require.NotEmpty(t, result.ValidationErrors)
	assert.Contains(t, result.ValidationErrors[0], "does not exist")
	assert.Equal(t, 0, result.RowsReturned)
}

func TestExecutePhantomColumn(t *testing.T) {
	adapter := newTestAdapter(t)

	result := adapter.Execute(context.Background(), "SELECT shoe_size FROM customers")

	assert.False(t, result.Success)
	assert.Contains(t, result.PhantomColumns, "shoe_size")
	assert.Empty(t, result.PhantomTables)
	assert.False(t, result.IsValid)
}

func TestExecuteSyntaxError(t *testing.T) {
	adapter := newTestAdapter(t)

	result := adapter.Execute(context.Background(), "SELEC id FROM customers")

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.False(t, result.IsValid)
	assert.Equal(t, 0, result.RowsReturned)
}

func TestExecuteEmptyResult(t *testing.T) {
	adapter := newTestAdapter(t)

	result := adapter.Execute(context.Background(), "SELECT name FROM customers WHERE id = 999")

	require.True(t, result.Success)
	assert.Equal(t, 0, result.RowsReturned)
	require.NotEmpty(t, result.Insights)
	assert.Contains(t, result.Insights[0], "empty")
}

func TestExecuteNullInsight(t *testing.T) {
	adapter := newTestAdapter(t)

	// Edward Kim has no phone number.
	result := adapter.Execute(context.Background(), "SELECT name, phone FROM customers WHERE id = 5")

	require.True(t, result.Success)
	require.Equal(t, 1, result.RowsReturned)
	assert.Nil(t, result.Rows[0]["phone"])

	found := false
	for _, insight := range result.Insights {
		if strings.Contains(strings.ToLower(insight), "null") {
			found = true
		}
	}
	assert.True(t, found, "expected a null-values insight, got %v", result.Insights)
}

func TestExecuteSelectStarWarning(t *testing.T) {
	adapter := newTestAdapter(t)

	result := adapter.Execute(context.Background(), "SELECT * FROM customers")

	require.True(t, result.Success)
	require.NotEmpty(t, result.ValidationWarnings)
	assert.Contains(t, result.ValidationWarnings[0], "SELECT *")
	// Warnings do not invalidate the query.
	assert.True(t, result.IsValid)
}

func TestExecuteAggregates(t *testing.T) {
	adapter := newTestAdapter(t)

	result := adapter.Execute(context.Background(),
		"SELECT city, COUNT(*) AS customer_count FROM customers GROUP BY city ORDER BY city")

	require.True(t, result.Success, "error: %s", result.Error)
	assert.True(t, result.IsValid, "validation errors: %v", result.ValidationErrors)
	assert.Equal(t, 4, result.RowsReturned)
}

func TestSchema(t *testing.T) {
	adapter := newTestAdapter(t)

	schema, err := adapter.Schema(context.Background())
	require.NoError(t, err)

	require.Contains(t, schema, "customers")
	require.Contains(t, schema, "orders")

	names := make([]string, 0, len(schema["customers"].Columns))
	for _, col := range schema["customers"].Columns {
		names = append(names, col.Name)
	}
	assert.Contains(t, names, "id")
	assert.Contains(t, names, "email")
}

func TestSchemaInfo(t *testing.T) {
	adapter := newTestAdapter(t)

	info, err := adapter.SchemaInfo(context.Background())
	require.NoError(t, err)

	table, ok := info["orders"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, table["columns"])
}

func TestRefreshSchema(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	schema, err := adapter.Schema(ctx)
	require.NoError(t, err)
	assert.NotContains(t, schema, "invoices")

	result := adapter.Execute(ctx, "CREATE TABLE invoices (id INTEGER PRIMARY KEY, amount REAL)")
	require.True(t, result.Success, "error: %s", result.Error)

	// Cached snapshot is stale until refreshed.
	schema, err = adapter.Schema(ctx)
	require.NoError(t, err)
	assert.NotContains(t, schema, "invoices")

	adapter.RefreshSchema()
	schema, err = adapter.Schema(ctx)
	require.NoError(t, err)
	assert.Contains(t, schema, "invoices")
}
