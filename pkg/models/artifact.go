package models

// ErrorExample is one illustrative failure recorded under a subcategory.
// SQL snippets are truncated to 200 characters before storage.
type ErrorExample struct {
	TaskID     string   `json:"task_id"`
	SQLSnippet string   `json:"sql_snippet"`
	Details    string   `json:"details,omitempty"`
	Evidence   []string `json:"evidence,omitempty"`
}

// SubcategoryBreakdown summarizes one error subcategory within a metrics
// report: count, percentage over failed tasks, and up to five examples.
type SubcategoryBreakdown struct {
	Count      int            `json:"count"`
	Percentage float64        `json:"percentage"`
	Examples   []ErrorExample `json:"examples"`
}

// ErrorMetricsReport rolls up error classifications across task results.
// Percentages are over failed tasks, rounded to one decimal.
type ErrorMetricsReport struct {
	TotalTasks      int `json:"total_tasks"`
	SuccessfulTasks int `json:"successful_tasks"`
	FailedTasks     int `json:"failed_tasks"`

	SuccessRate float64 `json:"success_rate"`

	CategoryCounts    map[string]int `json:"category_counts"`
	SubcategoryCounts map[string]int `json:"subcategory_counts"`

	CategoryPercentages    map[string]float64 `json:"category_percentages"`
	SubcategoryPercentages map[string]float64 `json:"subcategory_percentages"`

	DetailedBreakdown map[string]SubcategoryBreakdown `json:"detailed_breakdown"`
}

// ParticipantSummary is the per-candidate rollup after an assessment.
// Successful + Failed always equals TotalTasks.
type ParticipantSummary struct {
	ParticipantID string              `json:"participant_id"`
	Endpoint      string              `json:"endpoint"`
	TotalTasks    int                 `json:"total_tasks"`
	Successful    int                 `json:"successful"`
	Failed        int                 `json:"failed"`
	Scores        ScoreSummary        `json:"scores"`
	TaskResults   []TaskResult        `json:"task_results"`
	ErrorMetrics  *ErrorMetricsReport `json:"error_metrics,omitempty"`
}

// RankedParticipant is one row of the final ranking.
type RankedParticipant struct {
	Rank          int     `json:"rank"`
	ParticipantID string  `json:"participant_id"`
	OverallScore  float64 `json:"overall_score"`
}

// AgentTaskScore is one cell of the task comparison matrix.
type AgentTaskScore struct {
	Overall          float64 `json:"overall"`
	SQL              string  `json:"sql"`
	ExecutionSuccess bool    `json:"execution_success"`
}

// TaskComparisonRow compares every candidate's submission for one task.
type TaskComparisonRow struct {
	TaskID      string                    `json:"task_id"`
	AgentScores map[string]AgentTaskScore `json:"agent_scores"`
}

// AssessmentArtifact is the final ranked result of one assessment, emitted
// exactly once. Rankings enumerate every participant exactly once, descending
// by overall score with ties broken by participant id.
type AssessmentArtifact struct {
	AssessmentID        string                        `json:"assessment_id"`
	CompletedAt         string                        `json:"completed_at"`
	Config              map[string]any                `json:"config"`
	Rankings            []RankedParticipant           `json:"rankings"`
	Participants        map[string]ParticipantSummary `json:"participants"`
	TaskComparison      []TaskComparisonRow           `json:"task_comparison,omitempty"`
	Metadata            map[string]any                `json:"metadata,omitempty"`
	ErrorMetricsSummary *ErrorMetricsReport           `json:"error_metrics_summary,omitempty"`
}
