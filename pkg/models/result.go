package models

// TaskResult is the evaluation outcome for one (candidate, task) pair.
// It aggregates by value — no back-pointer to the candidate is needed; the
// orchestrator's accumulator keys results by candidate id.
type TaskResult struct {
	TaskID       string       `json:"task_id"`
	Question     string       `json:"question"`
	SQLSubmitted string       `json:"sql_submitted"`
	GoldSQL      string       `json:"gold_sql,omitempty"`
	Scores       ScoreSummary `json:"scores"`

	ExecutionSuccess bool    `json:"execution_success"`
	ExecutionTimeMs  float64 `json:"execution_time_ms"`
	RowsReturned     int     `json:"rows_returned"`

	ValidationErrors []string `json:"validation_errors,omitempty"`
	PhantomTables    []string `json:"phantom_tables,omitempty"`
	PhantomColumns   []string `json:"phantom_columns,omitempty"`
	ErrorMessage     string   `json:"error_message,omitempty"`

	Comparison *ComparisonResult `json:"comparison,omitempty"`

	// Error classification for metrics tracking
	ErrorCategory    string   `json:"error_category,omitempty"`
	ErrorSubcategory string   `json:"error_subcategory,omitempty"`
	ErrorDetails     string   `json:"error_details,omitempty"`
	ErrorEvidence    []string `json:"error_evidence,omitempty"`
}

// FailedTaskResult synthesizes a zero-score result for a task whose dispatch
// or execution never produced usable SQL.
func FailedTaskResult(task *GoldTask, errMsg string) TaskResult {
	return TaskResult{
		TaskID:           task.ID,
		Question:         task.Question,
		GoldSQL:          task.GoldSQL,
		Scores:           ScoreSummary{},
		ExecutionSuccess: false,
		ErrorMessage:     errMsg,
	}
}
