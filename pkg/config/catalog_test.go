package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
	{"id": "t1", "question": "How many customers?", "gold_sql": "SELECT COUNT(*) FROM customers", "difficulty": "easy", "tags": ["aggregates"]},
	{"id": "t2", "question": "List cities", "difficulty": "easy", "tags": ["basic"]},
	{"id": "t3", "question": "Join orders", "difficulty": "medium", "tags": ["joins"]},
	{"id": "t4", "question": "Window functions", "difficulty": "hard", "tags": ["windows", "aggregates"]},
	{"id": "t5", "question": "No difficulty tag"}
]`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := ParseCatalog([]byte(catalogJSON))
	require.NoError(t, err)
	return catalog
}

func TestParseCatalog(t *testing.T) {
	catalog := loadTestCatalog(t)
	assert.Equal(t, 5, catalog.Len())
}

func TestParseCatalogDefaultsDifficulty(t *testing.T) {
	catalog := loadTestCatalog(t)

	cfg, err := ParseAssessment(map[string]any{"difficulty": []any{"medium"}, "task_count": float64(10)})
	require.NoError(t, err)

	tasks := catalog.Filter(cfg)
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	// t5 has no difficulty and defaults to medium.
	assert.Equal(t, []string{"t3", "t5"}, ids)
}

func TestParseCatalogRejectsDuplicateIDs(t *testing.T) {
	_, err := ParseCatalog([]byte(`[{"id": "t1", "question": "a"}, {"id": "t1", "question": "b"}]`))
	assert.ErrorIs(t, err, ErrDuplicateTaskID)
}

func TestParseCatalogRejectsMissingID(t *testing.T) {
	_, err := ParseCatalog([]byte(`[{"question": "a"}]`))
	assert.Error(t, err)
}

func TestParseCatalogRejectsBadDifficulty(t *testing.T) {
	_, err := ParseCatalog([]byte(`[{"id": "t1", "question": "a", "difficulty": "legendary"}]`))
	assert.Error(t, err)
}

func TestFilterByDifficulty(t *testing.T) {
	catalog := loadTestCatalog(t)

	cfg, err := ParseAssessment(map[string]any{"difficulty": []any{"hard"}})
	require.NoError(t, err)

	tasks := catalog.Filter(cfg)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t4", tasks[0].ID)
}

func TestFilterByTags(t *testing.T) {
	catalog := loadTestCatalog(t)

	cfg, err := ParseAssessment(map[string]any{
		"difficulty": []any{"easy", "medium", "hard"},
		"tags":       []any{"aggregates"},
	})
	require.NoError(t, err)

	tasks := catalog.Filter(cfg)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, "t4", tasks[1].ID)
}

func TestFilterTaskCountLimit(t *testing.T) {
	catalog := loadTestCatalog(t)

	cfg, err := ParseAssessment(map[string]any{"task_count": float64(1)})
	require.NoError(t, err)

	tasks := catalog.Filter(cfg)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)
}

func TestFilterNoMatches(t *testing.T) {
	catalog := loadTestCatalog(t)

	cfg, err := ParseAssessment(map[string]any{"tags": []any{"nonexistent"}})
	require.NoError(t, err)

	assert.Empty(t, catalog.Filter(cfg))
}

func TestFilterPreservesCatalogOrder(t *testing.T) {
	catalog := loadTestCatalog(t)

	cfg, err := ParseAssessment(map[string]any{"difficulty": []any{"easy", "medium", "hard"}})
	require.NoError(t, err)

	tasks := catalog.Filter(cfg)
	require.Len(t, tasks, 5)
	for i, want := range []string{"t1", "t2", "t3", "t4", "t5"} {
		assert.Equal(t, want, tasks[i].ID)
	}
}
