package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() map[string]TableSchema {
	return map[string]TableSchema{
		"customers": {Columns: []ColumnInfo{
			{Name: "id", Type: "INTEGER"}, {Name: "name", Type: "TEXT"},
			{Name: "email", Type: "TEXT"}, {Name: "city", Type: "TEXT"},
		}},
		"orders": {Columns: []ColumnInfo{
			{Name: "id", Type: "INTEGER"}, {Name: "customer_id", Type: "INTEGER"},
			{Name: "total", Type: "REAL"}, {Name: "status", Type: "TEXT"},
		}},
	}
}

func TestTokenizeTables(t *testing.T) {
	refs := tokenize("SELECT name FROM customers JOIN orders ON orders.customer_id = customers.id")
	assert.Equal(t, []string{"customers", "orders"}, refs.tables)
}

func TestTokenizeAliases(t *testing.T) {
	refs := tokenize("SELECT c.name, o.total FROM customers c JOIN orders o ON o.customer_id = c.id")

	assert.Equal(t, "customers", refs.aliases["c"])
	assert.Equal(t, "orders", refs.aliases["o"])
}

func TestTokenizeIgnoresStringLiterals(t *testing.T) {
	refs := tokenize("SELECT name FROM customers WHERE city = 'FROM phantoms'")
	assert.Equal(t, []string{"customers"}, refs.tables)
}

func TestPhantomTables(t *testing.T) {
	schema := testSchema()

	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{"known table", "SELECT name FROM customers", nil},
		{"unknown table", "SELECT * FROM customerz", []string{"customerz"}},
		{"mixed", "SELECT * FROM customers JOIN invoices ON 1=1", []string{"invoices"}},
		{"case insensitive", "SELECT name FROM CUSTOMERS", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := tokenize(tt.sql)
			assert.Equal(t, tt.want, refs.phantomTables(schema))
		})
	}
}

func TestPhantomColumns(t *testing.T) {
	schema := testSchema()

	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{"known columns", "SELECT name, city FROM customers WHERE id = 1", nil},
		{"unknown bare column", "SELECT shoe_size FROM customers", []string{"shoe_size"}},
		{"unknown qualified column", "SELECT c.shoe_size FROM customers c", []string{"customers.shoe_size"}},
		{"qualified on phantom table reported as table", "SELECT x.col FROM unknown_table x", nil},
		{"select alias is not a column", "SELECT COUNT(*) AS total_customers FROM customers", nil},
		{"function names are not columns", "SELECT UPPER(name) FROM customers", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := tokenize(tt.sql)
			assert.Equal(t, tt.want, refs.phantomColumns(schema))
		})
	}
}

func TestKnownColumns(t *testing.T) {
	refs := tokenize("SELECT c.name, o.total FROM customers c JOIN orders o ON o.customer_id = c.id WHERE city = 'Chicago'")

	known := refs.knownColumns(testSchema())
	assert.Contains(t, known, "name")
	assert.Contains(t, known, "total")
	assert.Contains(t, known, "customer_id")
	assert.Contains(t, known, "city")
}

func TestQueryType(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT 1", "SELECT"},
		{"  select name from customers", "SELECT"},
		{"INSERT INTO t VALUES (1)", "INSERT"},
		{"update t set x = 1", "UPDATE"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, queryType(tt.sql), tt.sql)
	}
}
