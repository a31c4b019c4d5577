package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssessmentDefaults(t *testing.T) {
	cfg, err := ParseAssessment(nil)
	require.NoError(t, err)

	assert.Equal(t, []Difficulty{DifficultyEasy, DifficultyMedium}, cfg.Difficulty)
	assert.Equal(t, 10, cfg.TaskCount)
	assert.Nil(t, cfg.Tags)
	assert.Equal(t, SchemaBasic, cfg.SchemaType)
	assert.Equal(t, PresetDefault, cfg.ScorerPreset)
	assert.Equal(t, DialectSQLite, cfg.Dialect)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.True(t, cfg.SameTasks)
	assert.True(t, cfg.ParallelEvaluation)
}

func TestParseAssessmentFullConfig(t *testing.T) {
	// Values arrive as loosely-typed JSON: numbers are float64, lists are []any.
	raw := map[string]any{
		"difficulty":          []any{"hard"},
		"task_count":          float64(3),
		"tags":                []any{"joins", "aggregates"},
		"schema":              "enterprise",
		"scorer_preset":       "strict",
		"dialect":             "postgresql",
		"timeout_seconds":     float64(5),
		"parallel_evaluation": false,
	}

	cfg, err := ParseAssessment(raw)
	require.NoError(t, err)

	assert.Equal(t, []Difficulty{DifficultyHard}, cfg.Difficulty)
	assert.Equal(t, 3, cfg.TaskCount)
	assert.Equal(t, []string{"joins", "aggregates"}, cfg.Tags)
	assert.Equal(t, SchemaEnterprise, cfg.SchemaType)
	assert.Equal(t, PresetStrict, cfg.ScorerPreset)
	assert.Equal(t, DialectPostgreSQL, cfg.Dialect)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.False(t, cfg.ParallelEvaluation)
}

func TestParseAssessmentValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		err  error
	}{
		{"unknown preset", map[string]any{"scorer_preset": "lenient"}, ErrUnknownPreset},
		{"unknown dialect", map[string]any{"dialect": "oracle"}, ErrUnknownDialect},
		{"unknown schema", map[string]any{"schema": "huge"}, ErrUnknownSchema},
		{"negative task count", map[string]any{"task_count": float64(-1)}, ErrInvalidTaskCount},
		{"per-agent tasks", map[string]any{"same_tasks": false}, ErrPerAgentTasks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAssessment(tt.raw)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseAssessmentBadTypes(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"difficulty not a list", map[string]any{"difficulty": "easy"}},
		{"bad difficulty value", map[string]any{"difficulty": []any{"impossible"}}},
		{"task_count not a number", map[string]any{"task_count": "ten"}},
		{"tags not strings", map[string]any{"tags": []any{1, 2}}},
		{"same_tasks not a bool", map[string]any{"same_tasks": "yes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAssessment(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestSnapshot(t *testing.T) {
	cfg, err := ParseAssessment(map[string]any{"dialect": "duckdb", "scorer_preset": "quality"})
	require.NoError(t, err)

	snapshot := cfg.Snapshot()
	assert.Equal(t, "duckdb", snapshot["dialect"])
	assert.Equal(t, "quality", snapshot["scorer_preset"])
	assert.Equal(t, []string{"easy", "medium"}, snapshot["difficulty"])
}
