// Package models defines the shared data model for assessments: gold tasks,
// execution and comparison results, scores, per-task results, and the final
// assessment artifact.
package models

// Row is a single result row as an ordered column → value mapping.
// Column order is carried separately (ExecutionResult.Columns) because Go
// maps do not preserve insertion order.
type Row = map[string]any

// GoldTask is one prepared benchmark task from the gold catalog.
// Loaded once at startup; immutable afterwards.
type GoldTask struct {
	ID              string   `json:"id"`
	Question        string   `json:"question"`
	GoldSQL         string   `json:"gold_sql,omitempty"`
	ExpectedResults []Row    `json:"expected_results,omitempty"`
	Difficulty      string   `json:"difficulty"`
	Tags            []string `json:"tags,omitempty"`
}

// HasTag reports whether the task carries any of the given tags.
func (t *GoldTask) HasTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range t.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// TaskPayload is the JSON body dispatched to every candidate for one task.
type TaskPayload struct {
	TaskID   string         `json:"task_id"`
	Question string         `json:"question"`
	Schema   map[string]any `json:"schema"`
	Dialect  string         `json:"dialect"`
}

// CandidateResponse is the JSON body a candidate returns for a task payload.
// A 2xx response with non-empty SQL is a success; anything else is treated
// as a dispatch failure for that (candidate, task) pair.
type CandidateResponse struct {
	SQL       string `json:"sql"`
	Reasoning string `json:"reasoning,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
