package orchestrator

import (
	"context"

	"github.com/codeready-toolchain/sqlbench/pkg/classify"
	"github.com/codeready-toolchain/sqlbench/pkg/compare"
	"github.com/codeready-toolchain/sqlbench/pkg/config"
	"github.com/codeready-toolchain/sqlbench/pkg/executor"
	"github.com/codeready-toolchain/sqlbench/pkg/models"
	"github.com/codeready-toolchain/sqlbench/pkg/scoring"
)

// evaluator bundles the per-assessment evaluation pipeline: execute the
// submitted SQL, compare against expected results, score, and classify.
type evaluator struct {
	adapter    *executor.Adapter
	comparator *compare.Comparator
	scorer     *scoring.Scorer
	classifier *classify.Classifier
	cfg        *config.AssessmentConfig
}

// evaluate runs one submitted SQL query through the full pipeline.
func (e *evaluator) evaluate(ctx context.Context, task *models.GoldTask, sqlText string) models.TaskResult {
	execCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout())
	exec := e.adapter.Execute(execCtx, sqlText)
	cancel()

	var (
		comparison models.ComparisonResult
		matchScore *float64
	)
	switch {
	case !exec.Success:
		// Nothing to compare; the zero comparison scores correctness 0.
		comparison = models.ComparisonResult{}
	case task.ExpectedResults != nil:
		comparison = e.comparator.Compare(exec.Rows, task.ExpectedResults)
		matchScore = &comparison.MatchScore
	default:
		// No expected result set: the execution stands on its own.
		comparison = models.ExactMatch()
		matchScore = &comparison.MatchScore
	}

	score := e.scorer.Score(scoring.Input{
		Comparison: comparison,
		Execution:  exec,
		SQL:        sqlText,
		Dialect:    string(e.cfg.Dialect),
		Expected:   task.ExpectedResults,
	})

	classification := e.classifier.Classify(classify.Input{
		SQLSubmitted:     sqlText,
		GoldSQL:          task.GoldSQL,
		ExecutionSuccess: exec.Success,
		ValidationErrors: exec.ValidationErrors,
		PhantomTables:    exec.PhantomTables,
		PhantomColumns:   exec.PhantomColumns,
		ErrorMessage:     exec.Error,
		MatchScore:       matchScore,
		CorrectnessScore: &score.Correctness,
	})

	result := models.TaskResult{
		TaskID:           task.ID,
		Question:         task.Question,
		SQLSubmitted:     sqlText,
		GoldSQL:          task.GoldSQL,
		Scores:           score.Rounded(),
		ExecutionSuccess: exec.Success,
		ExecutionTimeMs:  exec.ExecutionTimeMs,
		RowsReturned:     exec.RowsReturned,
		ValidationErrors: exec.ValidationErrors,
		PhantomTables:    exec.PhantomTables,
		PhantomColumns:   exec.PhantomColumns,
		ErrorMessage:     exec.Error,
		ErrorCategory:    string(classification.Category),
		ErrorSubcategory: string(classification.Subcategory),
		ErrorDetails:     classification.Details,
		ErrorEvidence:    classification.Evidence,
	}
	if task.ExpectedResults != nil {
		comparison.Details = nil
		result.Comparison = &comparison
	}
	return result
}
