package models

// ExecutionResult is the outcome of executing one SQL statement against the
// reference database, including the validation side-channel computed by the
// execution adapter.
type ExecutionResult struct {
	Success         bool     `json:"success"`
	Rows            []Row    `json:"rows,omitempty"`
	Columns         []string `json:"columns,omitempty"`
	RowsReturned    int      `json:"rows_returned"`
	ExecutionTimeMs float64  `json:"execution_time_ms"`
	Error           string   `json:"error,omitempty"`

	// Validation side-channel
	IsValid            bool     `json:"is_valid"`
	ValidationErrors   []string `json:"validation_errors,omitempty"`
	ValidationWarnings []string `json:"validation_warnings,omitempty"`
	QueryType          string   `json:"query_type,omitempty"`
	TablesAccessed     []string `json:"tables_accessed,omitempty"`
	ColumnsAccessed    []string `json:"columns_accessed,omitempty"`
	PhantomTables      []string `json:"phantom_tables,omitempty"`
	PhantomColumns     []string `json:"phantom_columns,omitempty"`

	// Analysis block feeding the completeness dimension
	Insights []string `json:"insights,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

// ComparisonResult is the outcome of comparing an actual row-set against an
// expected one. IsMatch implies MatchScore >= 0.99 plus matching row and
// column counts.
type ComparisonResult struct {
	IsMatch          bool           `json:"is_match"`
	MatchScore       float64        `json:"match_score"`
	RowCountMatch    bool           `json:"row_count_match"`
	ColumnCountMatch bool           `json:"column_count_match"`
	Details          map[string]any `json:"details,omitempty"`
}

// ExactMatch returns the comparison used when a task carries no expected
// result set: the submitted query is scored against itself.
func ExactMatch() ComparisonResult {
	return ComparisonResult{
		IsMatch:          true,
		MatchScore:       1.0,
		RowCountMatch:    true,
		ColumnCountMatch: true,
	}
}
