package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

// Catalog holds the gold tasks loaded at startup. Read-only after load.
type Catalog struct {
	tasks []models.GoldTask
}

// LoadCatalog reads a gold-task catalog from a JSON file. Task ids must be
// unique within the catalog; difficulty defaults to medium when absent.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses catalog JSON (an array of gold tasks).
func ParseCatalog(data []byte) (*Catalog, error) {
	var tasks []models.GoldTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			return nil, fmt.Errorf("catalog task %d has no id", i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTaskID, t.ID)
		}
		seen[t.ID] = true
		if t.Difficulty == "" {
			t.Difficulty = string(DifficultyMedium)
		}
		if !Difficulty(t.Difficulty).IsValid() {
			return nil, fmt.Errorf("catalog task %s: difficulty %q is not one of easy, medium, hard", t.ID, t.Difficulty)
		}
	}

	slog.Info("Gold task catalog loaded", "tasks", len(tasks))
	return &Catalog{tasks: tasks}, nil
}

// Len returns the number of tasks in the catalog.
func (c *Catalog) Len() int {
	return len(c.tasks)
}

// Filter selects tasks for an assessment in catalog order: difficulty must be
// in the config set, at least one tag must overlap when tags are given, and
// selection stops once TaskCount is reached (TaskCount 0 means no limit).
func (c *Catalog) Filter(cfg *AssessmentConfig) []models.GoldTask {
	allowed := make(map[Difficulty]bool, len(cfg.Difficulty))
	for _, d := range cfg.Difficulty {
		allowed[d] = true
	}

	var filtered []models.GoldTask
	for i := range c.tasks {
		t := &c.tasks[i]
		if !allowed[Difficulty(t.Difficulty)] {
			continue
		}
		if len(cfg.Tags) > 0 && !t.HasTag(cfg.Tags) {
			continue
		}
		filtered = append(filtered, *t)
		if cfg.TaskCount > 0 && len(filtered) >= cfg.TaskCount {
			break
		}
	}
	return filtered
}
