package classify

import (
	"math"

	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

// maxExamplesPerSubcategory bounds how many example snippets a breakdown
// keeps per subcategory.
const maxExamplesPerSubcategory = 5

// sqlSnippetLimit truncates stored SQL snippets.
const sqlSnippetLimit = 200

// MetricsSummary accumulates classifications across task results and renders
// them as an error metrics report. Not safe for concurrent use; each
// assessment owns its summaries.
type MetricsSummary struct {
	totalTasks      int
	successfulTasks int
	failedTasks     int

	categoryCounts    map[string]int
	subcategoryCounts map[string]int
	examples          map[string][]models.ErrorExample
}

// NewMetricsSummary creates an empty summary.
func NewMetricsSummary() *MetricsSummary {
	return &MetricsSummary{
		categoryCounts:    make(map[string]int),
		subcategoryCounts: make(map[string]int),
		examples:          make(map[string][]models.ErrorExample),
	}
}

// Add records one classification.
func (m *MetricsSummary) Add(c Classification, taskID, sqlSubmitted string) {
	m.totalTasks++
	if c.Subcategory == SubNoError {
		m.successfulTasks++
	} else {
		m.failedTasks++
	}

	m.categoryCounts[string(c.Category)]++
	m.subcategoryCounts[string(c.Subcategory)]++

	sub := string(c.Subcategory)
	if len(m.examples[sub]) < maxExamplesPerSubcategory {
		m.examples[sub] = append(m.examples[sub], models.ErrorExample{
			TaskID:     taskID,
			SQLSnippet: truncate(sqlSubmitted, sqlSnippetLimit),
			Details:    c.Details,
			Evidence:   c.Evidence,
		})
	}
}

// Report renders the summary. Percentages are over failed tasks and rounded
// to one decimal; the no_error subcategory is excluded from percentage maps
// and the detailed breakdown.
func (m *MetricsSummary) Report() *models.ErrorMetricsReport {
	report := &models.ErrorMetricsReport{
		TotalTasks:             m.totalTasks,
		SuccessfulTasks:        m.successfulTasks,
		FailedTasks:            m.failedTasks,
		CategoryCounts:         copyCounts(m.categoryCounts),
		SubcategoryCounts:      copyCounts(m.subcategoryCounts),
		CategoryPercentages:    map[string]float64{},
		SubcategoryPercentages: map[string]float64{},
		DetailedBreakdown:      map[string]models.SubcategoryBreakdown{},
	}

	if m.totalTasks > 0 {
		report.SuccessRate = round1(float64(m.successfulTasks) / float64(m.totalTasks) * 100)
	}
	if m.failedTasks == 0 {
		return report
	}

	for cat, count := range m.categoryCounts {
		if cat == string(CategoryNoError) {
			continue
		}
		report.CategoryPercentages[cat] = round1(float64(count) / float64(m.failedTasks) * 100)
	}
	for sub, count := range m.subcategoryCounts {
		if sub == string(SubNoError) {
			continue
		}
		pct := round1(float64(count) / float64(m.failedTasks) * 100)
		report.SubcategoryPercentages[sub] = pct
		report.DetailedBreakdown[sub] = models.SubcategoryBreakdown{
			Count:      count,
			Percentage: pct,
			Examples:   m.examples[sub],
		}
	}
	return report
}

// Merge folds another summary into this one, used for the aggregate report
// across participants.
func (m *MetricsSummary) Merge(other *MetricsSummary) {
	m.totalTasks += other.totalTasks
	m.successfulTasks += other.successfulTasks
	m.failedTasks += other.failedTasks
	for k, v := range other.categoryCounts {
		m.categoryCounts[k] += v
	}
	for k, v := range other.subcategoryCounts {
		m.subcategoryCounts[k] += v
	}
	for k, examples := range other.examples {
		for _, ex := range examples {
			if len(m.examples[k]) >= maxExamplesPerSubcategory {
				break
			}
			m.examples[k] = append(m.examples[k], ex)
		}
	}
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
