package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/sqlbench/pkg/classify"
	"github.com/codeready-toolchain/sqlbench/pkg/config"
	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

func makeResult(taskID string, overall float64, success bool) models.TaskResult {
	category := classify.CategoryNoError
	sub := classify.SubNoError
	if !success {
		category = classify.CategorySQLError
		sub = classify.SubSyntaxError
	}
	return models.TaskResult{
		TaskID:           taskID,
		SQLSubmitted:     "SELECT 1",
		Scores:           models.ScoreSummary{Overall: overall, Correctness: overall},
		ExecutionSuccess: success,
		ErrorCategory:    string(category),
		ErrorSubcategory: string(sub),
	}
}

func defaultTestConfig(t *testing.T) *config.AssessmentConfig {
	t.Helper()
	cfg, err := config.ParseAssessment(nil)
	require.NoError(t, err)
	return cfg
}

func TestBuildArtifactRankings(t *testing.T) {
	participants := map[string]string{
		"agent-a": "http://a:8080",
		"agent-b": "http://b:8080",
	}
	results := map[string][]models.TaskResult{
		"agent-a": {makeResult("t1", 1.0, true), makeResult("t2", 1.0, true)},
		"agent-b": {makeResult("t1", 0.5, true), makeResult("t2", 0.5, true)},
	}

	artifact := BuildArtifact("ab12cd34", defaultTestConfig(t), participants, results)

	require.Len(t, artifact.Rankings, 2)
	assert.Equal(t, 1, artifact.Rankings[0].Rank)
	assert.Equal(t, "agent-a", artifact.Rankings[0].ParticipantID)
	assert.InDelta(t, 1.0, artifact.Rankings[0].OverallScore, 1e-9)
	assert.Equal(t, 2, artifact.Rankings[1].Rank)
	assert.Equal(t, "agent-b", artifact.Rankings[1].ParticipantID)
	assert.InDelta(t, 0.5, artifact.Rankings[1].OverallScore, 1e-9)

	require.Len(t, artifact.TaskComparison, 2)
	for _, row := range artifact.TaskComparison {
		assert.Len(t, row.AgentScores, 2)
	}
}

func TestBuildArtifactRankingTieBreak(t *testing.T) {
	participants := map[string]string{
		"zeta": "http://z:8080", "alpha": "http://a:8080", "mid": "http://m:8080",
	}
	results := map[string][]models.TaskResult{
		"zeta":  {makeResult("t1", 0.7, true)},
		"alpha": {makeResult("t1", 0.7, true)},
		"mid":   {makeResult("t1", 0.9, true)},
	}

	artifact := BuildArtifact("ab12cd34", defaultTestConfig(t), participants, results)

	require.Len(t, artifact.Rankings, 3)
	assert.Equal(t, "mid", artifact.Rankings[0].ParticipantID)
	assert.Equal(t, "alpha", artifact.Rankings[1].ParticipantID)
	assert.Equal(t, "zeta", artifact.Rankings[2].ParticipantID)
}

func TestBuildArtifactRankingTotality(t *testing.T) {
	participants := map[string]string{}
	results := map[string][]models.TaskResult{}
	for _, pid := range []string{"a", "b", "c", "d", "e"} {
		participants[pid] = "http://" + pid
		results[pid] = []models.TaskResult{makeResult("t1", 0.5, true)}
	}

	artifact := BuildArtifact("ab12cd34", defaultTestConfig(t), participants, results)

	seen := make(map[string]bool)
	for i, r := range artifact.Rankings {
		assert.Equal(t, i+1, r.Rank)
		assert.False(t, seen[r.ParticipantID], "participant ranked twice")
		seen[r.ParticipantID] = true
	}
	assert.Len(t, seen, len(participants))
}

func TestBuildArtifactSummaryCounts(t *testing.T) {
	participants := map[string]string{"agent-a": "http://a:8080"}
	results := map[string][]models.TaskResult{
		"agent-a": {
			makeResult("t1", 1.0, true),
			makeResult("t2", 0.0, false),
			makeResult("t3", 0.5, true),
		},
	}

	artifact := BuildArtifact("ab12cd34", defaultTestConfig(t), participants, results)

	summary := artifact.Participants["agent-a"]
	assert.Equal(t, 3, summary.TotalTasks)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, summary.TotalTasks, summary.Successful+summary.Failed)
	assert.Equal(t, "http://a:8080", summary.Endpoint)
	assert.InDelta(t, 0.5, summary.Scores.Overall, 1e-9)

	require.NotNil(t, summary.ErrorMetrics)
	assert.Equal(t, 1, summary.ErrorMetrics.SubcategoryCounts[string(classify.SubSyntaxError)])
}

func TestBuildArtifactTaskComparisonTruncatesSQL(t *testing.T) {
	longSQL := "SELECT " + strings.Repeat("name, ", 100) + "id FROM customers"
	result := makeResult("t1", 1.0, true)
	result.SQLSubmitted = longSQL

	artifact := BuildArtifact("ab12cd34", defaultTestConfig(t),
		map[string]string{"a": "http://a"},
		map[string][]models.TaskResult{"a": {result}})

	require.Len(t, artifact.TaskComparison, 1)
	sql := artifact.TaskComparison[0].AgentScores["a"].SQL
	assert.Len(t, sql, sqlSnippetLimit)
}

func TestBuildArtifactAggregateMetrics(t *testing.T) {
	participants := map[string]string{"a": "http://a", "b": "http://b"}
	results := map[string][]models.TaskResult{
		"a": {makeResult("t1", 1.0, true)},
		"b": {makeResult("t1", 0.0, false)},
	}

	artifact := BuildArtifact("ab12cd34", defaultTestConfig(t), participants, results)

	require.NotNil(t, artifact.ErrorMetricsSummary)
	assert.Equal(t, 2, artifact.ErrorMetricsSummary.TotalTasks)
	assert.Equal(t, 1, artifact.ErrorMetricsSummary.FailedTasks)
	assert.Equal(t, 2, artifact.Metadata["total_tasks_evaluated"])
	assert.Equal(t, 2, artifact.Metadata["total_participants"])
}

func TestBuildArtifactConfigSnapshot(t *testing.T) {
	artifact := BuildArtifact("ab12cd34", defaultTestConfig(t),
		map[string]string{"a": "http://a"},
		map[string][]models.TaskResult{"a": {makeResult("t1", 1.0, true)}})

	assert.Equal(t, "ab12cd34", artifact.AssessmentID)
	assert.NotEmpty(t, artifact.CompletedAt)
	assert.Equal(t, "sqlite", artifact.Config["dialect"])
	assert.Equal(t, "default", artifact.Config["scorer_preset"])
}
