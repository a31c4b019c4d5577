// Package services hosts the application service layer: it runs assessments
// on background goroutines, tracks their lifecycle for the API, publishes
// progress to the events layer, and triggers completion notifications.
package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/sqlbench/pkg/events"
	"github.com/codeready-toolchain/sqlbench/pkg/models"
	"github.com/codeready-toolchain/sqlbench/pkg/notify"
	"github.com/codeready-toolchain/sqlbench/pkg/orchestrator"
)

// ErrAssessmentNotFound is returned when an assessment id is unknown.
var ErrAssessmentNotFound = errors.New("assessment not found")

// AssessmentState is a snapshot of one assessment's lifecycle for the API.
type AssessmentState struct {
	AssessmentID string                     `json:"assessment_id"`
	Status       string                     `json:"status"`
	Progress     float64                    `json:"progress"`
	Message      string                     `json:"message"`
	Artifact     *models.AssessmentArtifact `json:"artifact,omitempty"`
}

// assessmentRecord is the mutable tracking entry for a running assessment.
type assessmentRecord struct {
	state  AssessmentState
	cancel context.CancelFunc
}

// AssessmentService owns assessment execution. Assessments run on background
// goroutines; state is kept in memory only — a restart forgets completed
// assessments, which is acceptable because artifacts are delivered through
// the stream and the GET endpoint during the process lifetime.
type AssessmentService struct {
	orc         *orchestrator.Orchestrator
	broadcaster *events.Broadcaster
	notifier    *notify.Service // nil-safe

	mu      sync.RWMutex
	records map[string]*assessmentRecord

	logger *slog.Logger
}

// NewAssessmentService creates the assessment service. notifier may be nil.
func NewAssessmentService(orc *orchestrator.Orchestrator, broadcaster *events.Broadcaster, notifier *notify.Service) *AssessmentService {
	return &AssessmentService{
		orc:         orc,
		broadcaster: broadcaster,
		notifier:    notifier,
		records:     make(map[string]*assessmentRecord),
		logger:      slog.Default().With("component", "assessment-service"),
	}
}

// Start launches an assessment and returns its id immediately. Progress
// streams on the assessment's events channel; the final state is readable
// via Get.
func (s *AssessmentService) Start(participants map[string]string, rawConfig map[string]any) string {
	assessmentID := uuid.NewString()[:8]
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.records[assessmentID] = &assessmentRecord{
		state: AssessmentState{
			AssessmentID: assessmentID,
			Status:       models.UpdateStatusSubmitted,
		},
		cancel: cancel,
	}
	s.mu.Unlock()

	go s.consume(ctx, cancel, assessmentID, participants, rawConfig)
	return assessmentID
}

// Get returns the current state of an assessment.
func (s *AssessmentService) Get(assessmentID string) (AssessmentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[assessmentID]
	if !ok {
		return AssessmentState{}, ErrAssessmentNotFound
	}
	return rec.state, nil
}

// Cancel aborts a running assessment. The orchestrator observes cancellation
// between tasks and emits a terminal failed update.
func (s *AssessmentService) Cancel(assessmentID string) error {
	s.mu.RLock()
	rec, ok := s.records[assessmentID]
	s.mu.RUnlock()
	if !ok {
		return ErrAssessmentNotFound
	}
	rec.cancel()
	return nil
}

func (s *AssessmentService) consume(ctx context.Context, cancel context.CancelFunc, assessmentID string, participants map[string]string, rawConfig map[string]any) {
	defer cancel()
	channel := events.AssessmentChannel(assessmentID)

	for update := range s.orc.AssessWithID(ctx, assessmentID, participants, rawConfig) {
		s.broadcaster.Publish(channel, update)
		s.broadcaster.Publish(events.GlobalAssessmentsChannel, update)
		s.record(assessmentID, update)

		if update.Terminal() {
			s.notifier.NotifyAssessmentCompleted(context.Background(), notify.AssessmentCompletedInput{
				AssessmentID: assessmentID,
				Status:       update.Status,
				Message:      update.Message,
				Artifact:     update.Artifact,
			})
		}
	}
}

func (s *AssessmentService) record(assessmentID string, update models.TaskUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[assessmentID]
	if !ok {
		return
	}
	rec.state.Status = update.Status
	rec.state.Message = update.Message
	if update.Progress != nil {
		rec.state.Progress = *update.Progress
	}
	if update.Artifact != nil {
		rec.state.Artifact = update.Artifact
	}
}
