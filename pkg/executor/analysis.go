package executor

import (
	"fmt"
	"strings"

	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

// analyze derives the insights and summary block from an execution result.
// Insight wording is load-bearing: the scorer's completeness dimension keys
// off "empty", "truncated", "null", and "slow".
func analyze(result *models.ExecutionResult) {
	if !result.Success {
		result.Summary = "Execution failed"
		if result.Error != "" {
			result.Summary = "Execution failed: " + firstLine(result.Error)
		}
		return
	}

	if result.RowsReturned == 0 {
		result.Insights = append(result.Insights, "Query returned an empty result set")
	}

	if cols := nullColumns(result); len(cols) > 0 {
		result.Insights = append(result.Insights,
			fmt.Sprintf("Result contains null values in columns: %s", strings.Join(cols, ", ")))
	}

	if result.ExecutionTimeMs > slowQueryMs {
		result.Insights = append(result.Insights,
			fmt.Sprintf("Query was slow: %.0fms", result.ExecutionTimeMs))
	}

	result.Summary = fmt.Sprintf("Returned %d rows in %.2fms", result.RowsReturned, result.ExecutionTimeMs)
}

// nullColumns lists columns containing at least one NULL, in column order.
func nullColumns(result *models.ExecutionResult) []string {
	withNull := make(map[string]bool)
	for _, row := range result.Rows {
		for col, v := range row {
			if v == nil {
				withNull[col] = true
			}
		}
	}
	var out []string
	for _, col := range result.Columns {
		if withNull[col] {
			out = append(out, col)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
