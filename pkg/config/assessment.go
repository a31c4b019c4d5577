package config

import (
	"fmt"
	"time"
)

// AssessmentConfig is the parsed task-selection and scoring configuration for
// one assessment. Constructed per assessment request from the raw config
// mapping; never shared across assessments.
type AssessmentConfig struct {
	// Task selection
	Difficulty []Difficulty
	TaskCount  int
	Tags       []string
	SchemaType SchemaType

	// Scoring
	ScorerPreset ScorerPreset

	// Execution
	Dialect        Dialect
	TimeoutSeconds float64

	// Tournament mode
	SameTasks          bool
	ParallelEvaluation bool

	// Raw retains the request mapping for the artifact's config snapshot.
	Raw map[string]any
}

// Timeout returns the per-task dispatch timeout as a duration.
func (c *AssessmentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// ParseAssessment parses the raw config mapping from an assessment request,
// applying defaults and validating every closed string set. A nil map yields
// the default configuration.
func ParseAssessment(raw map[string]any) (*AssessmentConfig, error) {
	cfg := &AssessmentConfig{
		Difficulty:         []Difficulty{DifficultyEasy, DifficultyMedium},
		TaskCount:          10,
		SchemaType:         SchemaBasic,
		ScorerPreset:       PresetDefault,
		Dialect:            DialectSQLite,
		TimeoutSeconds:     30,
		SameTasks:          true,
		ParallelEvaluation: true,
		Raw:                raw,
	}

	if raw == nil {
		return cfg, nil
	}

	if v, ok := raw["difficulty"]; ok {
		levels, err := stringSlice(v, "difficulty")
		if err != nil {
			return nil, err
		}
		cfg.Difficulty = cfg.Difficulty[:0]
		for _, s := range levels {
			d := Difficulty(s)
			if !d.IsValid() {
				return nil, fmt.Errorf("difficulty %q is not one of easy, medium, hard", s)
			}
			cfg.Difficulty = append(cfg.Difficulty, d)
		}
	}
	if v, ok := raw["task_count"]; ok {
		n, err := intValue(v, "task_count")
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, ErrInvalidTaskCount
		}
		cfg.TaskCount = n
	}
	if v, ok := raw["tags"]; ok && v != nil {
		tags, err := stringSlice(v, "tags")
		if err != nil {
			return nil, err
		}
		cfg.Tags = tags
	}
	if v, ok := raw["schema"]; ok {
		s, err := stringValue(v, "schema")
		if err != nil {
			return nil, err
		}
		cfg.SchemaType = SchemaType(s)
		if !cfg.SchemaType.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, s)
		}
	}
	if v, ok := raw["scorer_preset"]; ok {
		s, err := stringValue(v, "scorer_preset")
		if err != nil {
			return nil, err
		}
		cfg.ScorerPreset = ScorerPreset(s)
		if !cfg.ScorerPreset.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, s)
		}
	}
	if v, ok := raw["dialect"]; ok {
		s, err := stringValue(v, "dialect")
		if err != nil {
			return nil, err
		}
		cfg.Dialect = Dialect(s)
		if !cfg.Dialect.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, s)
		}
	}
	if v, ok := raw["timeout_seconds"]; ok {
		f, err := floatValue(v, "timeout_seconds")
		if err != nil {
			return nil, err
		}
		cfg.TimeoutSeconds = f
	}
	if v, ok := raw["same_tasks"]; ok {
		b, err := boolValue(v, "same_tasks")
		if err != nil {
			return nil, err
		}
		cfg.SameTasks = b
	}
	if v, ok := raw["parallel_evaluation"]; ok {
		b, err := boolValue(v, "parallel_evaluation")
		if err != nil {
			return nil, err
		}
		cfg.ParallelEvaluation = b
	}

	// Per-candidate task sampling has no defined policy; reject rather than
	// silently evaluate candidates on different task lists.
	if !cfg.SameTasks {
		return nil, ErrPerAgentTasks
	}

	return cfg, nil
}

// Snapshot returns the config subset recorded in the final artifact.
func (c *AssessmentConfig) Snapshot() map[string]any {
	difficulty := make([]string, len(c.Difficulty))
	for i, d := range c.Difficulty {
		difficulty[i] = string(d)
	}
	return map[string]any{
		"difficulty":    difficulty,
		"task_count":    c.TaskCount,
		"tags":          c.Tags,
		"schema_type":   string(c.SchemaType),
		"scorer_preset": string(c.ScorerPreset),
		"dialect":       string(c.Dialect),
	}
}

// --- loose JSON value coercion ---

func stringValue(v any, field string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", field, v)
	}
	return s, nil
}

func stringSlice(v any, field string) ([]string, error) {
	switch vv := v.(type) {
	case []string:
		return vv, nil
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a list of strings, got element %T", field, e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a list of strings, got %T", field, v)
	}
}

func intValue(v any, field string) (int, error) {
	switch vv := v.(type) {
	case int:
		return vv, nil
	case float64:
		return int(vv), nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", field, v)
	}
}

func floatValue(v any, field string) (float64, error) {
	switch vv := v.(type) {
	case int:
		return float64(vv), nil
	case float64:
		return vv, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", field, v)
	}
}

func boolValue(v any, field string) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean, got %T", field, v)
	}
	return b, nil
}
