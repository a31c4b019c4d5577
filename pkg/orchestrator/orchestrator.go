// Package orchestrator drives assessments: it filters gold tasks, fans each
// task out to every candidate through the resilient client, evaluates the
// returned SQL, streams progress updates, and builds the final artifact.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/sqlbench/pkg/classify"
	"github.com/codeready-toolchain/sqlbench/pkg/compare"
	"github.com/codeready-toolchain/sqlbench/pkg/config"
	"github.com/codeready-toolchain/sqlbench/pkg/dispatch"
	"github.com/codeready-toolchain/sqlbench/pkg/executor"
	"github.com/codeready-toolchain/sqlbench/pkg/models"
	"github.com/codeready-toolchain/sqlbench/pkg/scoring"
)

// updateBuffer bounds how many progress updates may sit unconsumed before
// non-terminal updates start being dropped. The orchestrator never blocks
// dispatch on a slow consumer.
const updateBuffer = 16

// Orchestrator runs assessments against a catalog and a reference database.
// Safe to share across assessments: per-assessment state lives on the stack
// of each Assess call.
type Orchestrator struct {
	catalog *config.Catalog
	adapter *executor.Adapter
	client  *dispatch.Client
	logger  *slog.Logger
}

// New creates an orchestrator.
func New(catalog *config.Catalog, adapter *executor.Adapter, client *dispatch.Client) *Orchestrator {
	return &Orchestrator{
		catalog: catalog,
		adapter: adapter,
		client:  client,
		logger:  slog.Default().With("component", "orchestrator"),
	}
}

// Assess runs one assessment and returns its progress stream. The stream is
// closed after exactly one terminal update (completed or failed). The
// consumer may detach at any time; pending non-terminal updates are dropped
// rather than blocking dispatch. Cancelling ctx aborts between tasks.
func (o *Orchestrator) Assess(ctx context.Context, participants map[string]string, rawConfig map[string]any) <-chan models.TaskUpdate {
	return o.AssessWithID(ctx, uuid.NewString()[:8], participants, rawConfig)
}

// AssessWithID runs an assessment under a caller-allocated id, so callers
// can route the stream before the first update arrives.
func (o *Orchestrator) AssessWithID(ctx context.Context, assessmentID string, participants map[string]string, rawConfig map[string]any) <-chan models.TaskUpdate {
	updates := make(chan models.TaskUpdate, updateBuffer)
	go func() {
		defer close(updates)
		o.run(ctx, assessmentID, participants, rawConfig, updates)
	}()
	return updates
}

// emit delivers a non-terminal update without blocking; a full buffer drops
// the update.
func emit(updates chan<- models.TaskUpdate, u models.TaskUpdate) {
	select {
	case updates <- u:
	default:
	}
}

// emitTerminal delivers the terminal update. A free buffer slot is always
// used, even after cancellation; with a full buffer it waits for space unless
// the context is gone.
func emitTerminal(ctx context.Context, updates chan<- models.TaskUpdate, u models.TaskUpdate) {
	select {
	case updates <- u:
		return
	default:
	}
	select {
	case updates <- u:
	case <-ctx.Done():
	}
}

func (o *Orchestrator) run(ctx context.Context, assessmentID string, participants map[string]string, rawConfig map[string]any, updates chan<- models.TaskUpdate) {
	logger := o.logger.With("assessment_id", assessmentID)

	fail := func(msg string) {
		logger.Warn("Assessment failed", "reason", msg)
		emitTerminal(ctx, updates, models.NewTaskUpdate(models.UpdateStatusFailed, msg).WithProgress(1.0))
	}

	if len(participants) == 0 {
		fail("assessment has no participants")
		return
	}

	pids := sortedKeys(participants)

	submitted := models.NewTaskUpdate(models.UpdateStatusSubmitted,
		fmt.Sprintf("Assessment %s started with %d participants", assessmentID, len(participants)))
	submitted.Data = map[string]any{
		"assessment_id": assessmentID,
		"participants":  pids,
		"config":        rawConfig,
	}
	emit(updates, submitted.WithProgress(0.0))

	cfg, err := config.ParseAssessment(rawConfig)
	if err != nil {
		fail(fmt.Sprintf("invalid assessment config: %v", err))
		return
	}

	scorer, err := scoring.New(cfg.ScorerPreset)
	if err != nil {
		fail(fmt.Sprintf("invalid assessment config: %v", err))
		return
	}
	comparator := compare.NewDefault()
	classifier := classify.New()

	tasks := o.catalog.Filter(cfg)
	if len(tasks) == 0 {
		fail("No tasks match the specified criteria")
		return
	}

	schemaInfo, err := o.adapter.SchemaInfo(ctx)
	if err != nil {
		fail(fmt.Sprintf("reference schema unavailable: %v", err))
		return
	}

	logger.Info("Assessment started",
		"participants", len(participants), "tasks", len(tasks),
		"preset", cfg.ScorerPreset, "dialect", cfg.Dialect)

	emit(updates, models.NewTaskUpdate(models.UpdateStatusWorking,
		fmt.Sprintf("Evaluating %d tasks across %d participants", len(tasks), len(participants))).
		WithProgress(0.05))

	eval := evaluator{
		adapter:    o.adapter,
		comparator: comparator,
		scorer:     scorer,
		classifier: classifier,
		cfg:        cfg,
	}

	totalEvaluations := len(tasks) * len(participants)
	evaluationsDone := 0
	results := make(map[string][]models.TaskResult, len(participants))

	for i := range tasks {
		if ctx.Err() != nil {
			fail("assessment cancelled")
			return
		}

		task := &tasks[i]
		payload := models.TaskPayload{
			TaskID:   task.ID,
			Question: task.Question,
			Schema:   schemaInfo,
			Dialect:  string(cfg.Dialect),
		}

		responses := o.dispatchTask(ctx, pids, participants, payload, cfg.ParallelEvaluation)

		// Executions are serialized on the adapter regardless of dispatch
		// mode; evaluation order follows the sorted participant ids.
		for _, pid := range pids {
			resp := responses[pid]
			var taskResult models.TaskResult
			if resp.SQL == "" {
				errMsg := resp.Error
				if errMsg == "" {
					errMsg = "No SQL returned"
				}
				taskResult = models.FailedTaskResult(task, errMsg)
				cls := classifier.Classify(classify.Input{
					ExecutionSuccess: false,
					ErrorMessage:     errMsg,
				})
				taskResult.ErrorCategory = string(cls.Category)
				taskResult.ErrorSubcategory = string(cls.Subcategory)
				taskResult.ErrorDetails = cls.Details
			} else {
				taskResult = eval.evaluate(ctx, task, resp.SQL)
			}

			results[pid] = append(results[pid], taskResult)
			evaluationsDone++

			progress := 0.10 + 0.85*float64(evaluationsDone)/float64(totalEvaluations)
			working := models.NewTaskUpdate(models.UpdateStatusWorking,
				fmt.Sprintf("%s: %s scored %.2f%%", pid, task.ID, taskResult.Scores.Overall*100))
			working.Data = map[string]any{
				"participant":       pid,
				"task_id":           task.ID,
				"score":             taskResult.Scores.Overall,
				"execution_success": taskResult.ExecutionSuccess,
			}
			emit(updates, working.WithProgress(progress))
		}
	}

	emit(updates, models.NewTaskUpdate(models.UpdateStatusWorking,
		"Building assessment artifact with rankings...").WithProgress(0.95))

	artifact := BuildArtifact(assessmentID, cfg, participants, results)

	completed := models.NewTaskUpdate(models.UpdateStatusCompleted,
		fmt.Sprintf("Assessment complete. Winner: %s (%.2f%%)",
			artifact.Rankings[0].ParticipantID, artifact.Rankings[0].OverallScore*100))
	completed.Artifact = artifact
	logger.Info("Assessment completed", "winner", artifact.Rankings[0].ParticipantID)
	emitTerminal(ctx, updates, completed.WithProgress(1.0))
}

// dispatchTask sends one task payload to every candidate, concurrently when
// parallel evaluation is on. Transport failures become empty-SQL responses
// carrying the error; they never abort the assessment.
func (o *Orchestrator) dispatchTask(ctx context.Context, pids []string, participants map[string]string, payload models.TaskPayload, parallel bool) map[string]models.CandidateResponse {
	responses := make(map[string]models.CandidateResponse, len(pids))

	if !parallel {
		for _, pid := range pids {
			responses[pid] = o.dispatchOne(ctx, participants[pid], payload)
		}
		return responses
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, pid := range pids {
		wg.Add(1)
		go func(pid, endpoint string) {
			defer wg.Done()
			resp := o.dispatchOne(ctx, endpoint, payload)
			mu.Lock()
			responses[pid] = resp
			mu.Unlock()
		}(pid, participants[pid])
	}
	wg.Wait()
	return responses
}

func (o *Orchestrator) dispatchOne(ctx context.Context, endpoint string, payload models.TaskPayload) models.CandidateResponse {
	var resp models.CandidateResponse
	if err := o.client.Post(ctx, endpoint, dispatch.OpSQLGeneration, payload, &resp); err != nil {
		o.logger.Warn("Candidate dispatch failed",
			"endpoint", endpoint, "task_id", payload.TaskID, "error", err)
		return models.CandidateResponse{Error: err.Error()}
	}
	return resp
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
