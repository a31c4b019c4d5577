package orchestrator

import (
	"sort"
	"time"

	"github.com/codeready-toolchain/sqlbench/pkg/classify"
	"github.com/codeready-toolchain/sqlbench/pkg/config"
	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

// sqlSnippetLimit truncates SQL stored in the task comparison matrix.
const sqlSnippetLimit = 200

// BuildArtifact rolls per-task results up into the final assessment
// artifact: per-participant summaries with error metrics, deterministic
// rankings, the task comparison matrix, and the aggregate error roll-up.
func BuildArtifact(assessmentID string, cfg *config.AssessmentConfig, participants map[string]string, results map[string][]models.TaskResult) *models.AssessmentArtifact {
	summaries := make(map[string]models.ParticipantSummary, len(results))
	aggregate := classify.NewMetricsSummary()
	totalEvaluated := 0

	for pid, taskResults := range results {
		summary, metrics := buildParticipantSummary(pid, participants[pid], taskResults)
		summaries[pid] = summary
		aggregate.Merge(metrics)
		totalEvaluated += len(taskResults)
	}

	artifact := &models.AssessmentArtifact{
		AssessmentID: assessmentID,
		CompletedAt:  time.Now().UTC().Format(time.RFC3339),
		Config:       cfg.Snapshot(),
		Rankings:     buildRankings(summaries),
		Participants: summaries,
		Metadata: map[string]any{
			"total_tasks_evaluated": totalEvaluated,
			"total_participants":    len(participants),
		},
		ErrorMetricsSummary: aggregate.Report(),
	}

	// The matrix assumes every candidate saw the same task list.
	if cfg.SameTasks {
		artifact.TaskComparison = buildTaskComparison(results)
	}
	return artifact
}

func buildParticipantSummary(pid, endpoint string, taskResults []models.TaskResult) (models.ParticipantSummary, *classify.MetricsSummary) {
	metrics := classify.NewMetricsSummary()
	successful := 0
	for _, tr := range taskResults {
		if tr.ExecutionSuccess {
			successful++
		}
		if tr.ErrorCategory != "" {
			metrics.Add(classify.Classification{
				Category:    classify.Category(tr.ErrorCategory),
				Subcategory: classify.Subcategory(tr.ErrorSubcategory),
				Details:     tr.ErrorDetails,
				Evidence:    tr.ErrorEvidence,
			}, tr.TaskID, tr.SQLSubmitted)
		}
	}

	return models.ParticipantSummary{
		ParticipantID: pid,
		Endpoint:      endpoint,
		TotalTasks:    len(taskResults),
		Successful:    successful,
		Failed:        len(taskResults) - successful,
		Scores:        averageScores(taskResults),
		TaskResults:   taskResults,
		ErrorMetrics:  metrics.Report(),
	}, metrics
}

// averageScores is the arithmetic mean of every dimension and sub-score.
func averageScores(taskResults []models.TaskResult) models.ScoreSummary {
	if len(taskResults) == 0 {
		return models.ScoreSummary{}
	}

	var sum models.ScoreSummary
	for _, tr := range taskResults {
		s := tr.Scores
		sum.Overall += s.Overall
		sum.Correctness += s.Correctness
		sum.Efficiency += s.Efficiency
		sum.Safety += s.Safety
		sum.Completeness += s.Completeness
		sum.SemanticAccuracy += s.SemanticAccuracy
		sum.BestPractices += s.BestPractices
		sum.PlanQuality += s.PlanQuality
		sum.HallucinationScore += s.HallucinationScore
		sum.ValidationScore += s.ValidationScore
		sum.PerformanceScore += s.PerformanceScore
	}

	n := float64(len(taskResults))
	sum.Overall /= n
	sum.Correctness /= n
	sum.Efficiency /= n
	sum.Safety /= n
	sum.Completeness /= n
	sum.SemanticAccuracy /= n
	sum.BestPractices /= n
	sum.PlanQuality /= n
	sum.HallucinationScore /= n
	sum.ValidationScore /= n
	sum.PerformanceScore /= n
	return sum.Rounded()
}

// buildRankings sorts participants descending by averaged overall score;
// ties break by participant id ascending so ranking is deterministic.
func buildRankings(summaries map[string]models.ParticipantSummary) []models.RankedParticipant {
	ranked := make([]models.RankedParticipant, 0, len(summaries))
	for pid, s := range summaries {
		ranked = append(ranked, models.RankedParticipant{
			ParticipantID: pid,
			OverallScore:  s.Scores.Overall,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].OverallScore != ranked[j].OverallScore {
			return ranked[i].OverallScore > ranked[j].OverallScore
		}
		return ranked[i].ParticipantID < ranked[j].ParticipantID
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// buildTaskComparison emits one row per task index with every candidate's
// overall score, truncated SQL, and execution success.
func buildTaskComparison(results map[string][]models.TaskResult) []models.TaskComparisonRow {
	if len(results) == 0 {
		return nil
	}

	pids := make([]string, 0, len(results))
	for pid := range results {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	first := results[pids[0]]
	rows := make([]models.TaskComparisonRow, 0, len(first))
	for i, tr := range first {
		row := models.TaskComparisonRow{
			TaskID:      tr.TaskID,
			AgentScores: make(map[string]models.AgentTaskScore, len(pids)),
		}
		for _, pid := range pids {
			taskResults := results[pid]
			if i >= len(taskResults) {
				continue
			}
			r := taskResults[i]
			row.AgentScores[pid] = models.AgentTaskScore{
				Overall:          models.Round4(r.Scores.Overall),
				SQL:              truncateSQL(r.SQLSubmitted),
				ExecutionSuccess: r.ExecutionSuccess,
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func truncateSQL(s string) string {
	if len(s) <= sqlSnippetLimit {
		return s
	}
	return s[:sqlSnippetLimit]
}
