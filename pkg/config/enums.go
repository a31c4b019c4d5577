// Package config provides configuration for the sqlbench service: assessment
// request parsing, the gold-task catalog, and server settings loaded from the
// environment.
package config

// Difficulty classifies a gold task.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid checks if the difficulty is one of the closed set.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// ScorerPreset names a bundle of scorer weights and heuristics.
type ScorerPreset string

const (
	PresetDefault     ScorerPreset = "default"
	PresetStrict      ScorerPreset = "strict"
	PresetPerformance ScorerPreset = "performance"
	PresetQuality     ScorerPreset = "quality"
)

// IsValid checks if the preset is one of the closed set.
func (p ScorerPreset) IsValid() bool {
	switch p {
	case PresetDefault, PresetStrict, PresetPerformance, PresetQuality:
		return true
	default:
		return false
	}
}

// Dialect identifies the SQL engine backing the reference database.
type Dialect string

const (
	DialectSQLite     Dialect = "sqlite"
	DialectDuckDB     Dialect = "duckdb"
	DialectPostgreSQL Dialect = "postgresql"
)

// IsValid checks if the dialect is one of the closed set.
func (d Dialect) IsValid() bool {
	switch d {
	case DialectSQLite, DialectDuckDB, DialectPostgreSQL:
		return true
	default:
		return false
	}
}

// SchemaType names a reference schema variant; the server seeds the reference
// database with one of them. An assessment's schema_type is validated and
// recorded in its config snapshot but does not change the schema it runs
// against.
type SchemaType string

const (
	SchemaBasic      SchemaType = "basic"
	SchemaEnterprise SchemaType = "enterprise"
)

// IsValid checks if the schema type is one of the closed set.
func (s SchemaType) IsValid() bool {
	return s == SchemaBasic || s == SchemaEnterprise
}
