package config

import (
	"fmt"
	"os"
	"strconv"
)

// ServerConfig holds process-level settings loaded from the environment.
type ServerConfig struct {
	HTTPPort string

	// TasksPath points at the gold-task catalog JSON file.
	TasksPath string

	// Dialect selects the reference database engine. ScorerPreset is
	// validated at load time but not applied to assessments: a request that
	// omits dialect or scorer_preset gets sqlite and default.
	Dialect      Dialect
	ScorerPreset ScorerPreset

	// SeedReferenceDB applies the embedded sample schema + data on startup.
	SeedReferenceDB bool

	// Slack notification settings; empty token or channel disables delivery.
	SlackToken   string
	SlackChannel string
	DashboardURL string
}

// LoadServerConfigFromEnv loads server configuration from environment
// variables with defaults, validating the closed string sets.
func LoadServerConfigFromEnv() (ServerConfig, error) {
	cfg := ServerConfig{
		HTTPPort:     getEnvOrDefault("HTTP_PORT", "8080"),
		TasksPath:    getEnvOrDefault("TASKS_PATH", "./tasks/gold_queries.json"),
		Dialect:      Dialect(getEnvOrDefault("SQL_DIALECT", string(DialectSQLite))),
		ScorerPreset: ScorerPreset(getEnvOrDefault("SCORER_PRESET", string(PresetDefault))),
		SlackToken:   os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel: os.Getenv("SLACK_CHANNEL_ID"),
		DashboardURL: os.Getenv("DASHBOARD_URL"),
	}

	seed, err := strconv.ParseBool(getEnvOrDefault("SEED_REFERENCE_DB", "true"))
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid SEED_REFERENCE_DB: %w", err)
	}
	cfg.SeedReferenceDB = seed

	if !cfg.Dialect.IsValid() {
		return ServerConfig{}, fmt.Errorf("%w: %q", ErrUnknownDialect, cfg.Dialect)
	}
	if !cfg.ScorerPreset.IsValid() {
		return ServerConfig{}, fmt.Errorf("%w: %q", ErrUnknownPreset, cfg.ScorerPreset)
	}
	return cfg, nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
