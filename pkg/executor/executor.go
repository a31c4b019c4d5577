// Package executor provides the execution adapter: it runs one SQL statement
// against the reference database and returns rows, timing, and the validation
// side-channel (phantom identifiers, warnings, query type) used by scoring
// and classification.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeready-toolchain/sqlbench/pkg/database"
	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

// maxRows bounds how many rows a single execution materializes. Results past
// the cap are dropped and reported via a truncation insight.
const maxRows = 1000

// slowQueryMs is the execution time past which a slowness insight is added.
const slowQueryMs = 1000.0

// Adapter executes SQL against the reference database bound at construction.
// Executions are serialized per assessment by the orchestrator; the schema
// cache has its own lock so Schema may be read concurrently.
type Adapter struct {
	client *database.Client
	cache  *schemaCache
	logger *slog.Logger
}

// New creates an execution adapter bound to the given reference database.
func New(client *database.Client) *Adapter {
	return &Adapter{
		client: client,
		cache:  newSchemaCache(client),
		logger: slog.Default().With("component", "executor"),
	}
}

// Execute runs one SQL statement and returns the full execution result.
// It never returns an error: driver and parse failures are reported inside
// the result with Success=false. Driver-level timeouts surface with the word
// "timeout" in the error text; retries are the orchestrator's decision.
func (a *Adapter) Execute(ctx context.Context, sqlText string) models.ExecutionResult {
	result := models.ExecutionResult{QueryType: queryType(sqlText)}

	schema, schemaErr := a.cache.get(ctx)
	if schemaErr != nil {
		a.logger.Warn("Schema snapshot unavailable, phantom detection skipped", "error", schemaErr)
	} else {
		a.validate(sqlText, schema, &result)
	}

	start := time.Now()
	rows, err := a.client.DB().QueryContext(ctx, sqlText)
	result.ExecutionTimeMs = float64(time.Since(start)) / float64(time.Millisecond)

	if err != nil {
		result.Success = false
		result.Error = executionError(err)
		result.IsValid = false
		if len(result.ValidationErrors) == 0 {
			result.ValidationErrors = append(result.ValidationErrors, result.Error)
		}
		analyze(&result)
		return result
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		result.Success = false
		result.Error = fmt.Sprintf("read columns: %v", err)
		result.IsValid = false
		analyze(&result)
		return result
	}
	result.Columns = columns

	data, truncated, err := scanRows(rows, columns)
	result.ExecutionTimeMs = float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		result.Success = false
		result.Error = executionError(err)
		result.IsValid = false
		analyze(&result)
		return result
	}

	result.Success = true
	result.Rows = data
	result.RowsReturned = len(data)
	if truncated {
		result.Insights = append(result.Insights,
			fmt.Sprintf("Result truncated to %d rows", maxRows))
	}
	analyze(&result)
	return result
}

// Schema returns the cached schema snapshot, computing it on first use.
func (a *Adapter) Schema(ctx context.Context) (map[string]TableSchema, error) {
	return a.cache.get(ctx)
}

// SchemaInfo renders the schema snapshot as the JSON-friendly mapping sent
// to candidates inside task payloads.
func (a *Adapter) SchemaInfo(ctx context.Context) (map[string]any, error) {
	schema, err := a.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	info := make(map[string]any, len(schema))
	for table, ts := range schema {
		cols := make([]map[string]string, 0, len(ts.Columns))
		for _, c := range ts.Columns {
			cols = append(cols, map[string]string{"name": c.Name, "type": c.Type})
		}
		info[table] = map[string]any{"columns": cols}
	}
	return info, nil
}

// RefreshSchema invalidates the cached snapshot; the next read recomputes it.
func (a *Adapter) RefreshSchema() {
	a.cache.invalidate()
}

// validate fills the validation side-channel: referenced identifiers,
// phantoms, and lint warnings.
func (a *Adapter) validate(sqlText string, schema map[string]TableSchema, result *models.ExecutionResult) {
	refs := tokenize(sqlText)
	result.TablesAccessed = refs.tables
	result.ColumnsAccessed = refs.knownColumns(schema)
	result.PhantomTables = refs.phantomTables(schema)
	result.PhantomColumns = refs.phantomColumns(schema)
	result.IsValid = len(result.PhantomTables) == 0 && len(result.PhantomColumns) == 0

	for _, t := range result.PhantomTables {
		result.ValidationErrors = append(result.ValidationErrors,
			fmt.Sprintf("Table '%s' does not exist in schema", t))
	}
	for _, c := range result.PhantomColumns {
		result.ValidationErrors = append(result.ValidationErrors,
			fmt.Sprintf("Column '%s' does not exist in schema", c))
	}

	if strings.Contains(strings.ToUpper(sqlText), "SELECT *") && strings.EqualFold(result.QueryType, "SELECT") {
		result.ValidationWarnings = append(result.ValidationWarnings,
			"SELECT * retrieves all columns; prefer an explicit column list")
	}
	if result.QueryType != "SELECT" && result.QueryType != "" {
		result.ValidationWarnings = append(result.ValidationWarnings,
			fmt.Sprintf("%s statement mutates the reference database", result.QueryType))
	}
}

// scanRows reads up to maxRows rows into ordered column→value mappings.
func scanRows(rows *sql.Rows, columns []string) ([]models.Row, bool, error) {
	var data []models.Row
	truncated := false

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if len(data) >= maxRows {
			truncated = true
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, false, fmt.Errorf("scan row: %w", err)
		}
		row := make(models.Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return data, truncated, nil
}

// normalizeValue converts driver-specific values into the comparator's value
// domain: nil, bool, int64, float64, string, time.Time.
func normalizeValue(v any) any {
	switch vv := v.(type) {
	case []byte:
		return string(vv)
	case int:
		return int64(vv)
	case int32:
		return int64(vv)
	case float32:
		return float64(vv)
	default:
		return v
	}
}

// executionError renders a driver error, mapping context deadlines to an
// error text containing "timeout" per the adapter contract.
func executionError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "execution timeout exceeded"
	}
	return err.Error()
}

// queryType extracts the leading SQL verb, uppercased.
func queryType(sqlText string) string {
	fields := strings.Fields(strings.TrimSpace(sqlText))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
