// Package notify delivers assessment completion notifications to Slack.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goslack "github.com/slack-go/slack"

	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

// postTimeout bounds one Slack API call.
const postTimeout = 10 * time.Second

// ServiceConfig holds the parameters needed to construct a Service.
type ServiceConfig struct {
	Token        string
	Channel      string
	DashboardURL string
}

// AssessmentCompletedInput contains data for a terminal assessment
// notification.
type AssessmentCompletedInput struct {
	AssessmentID string
	Status       string // completed, failed
	Message      string
	Artifact     *models.AssessmentArtifact
}

// Service posts assessment notifications to a Slack channel.
// Nil-safe: all methods are no-ops when the service is nil.
type Service struct {
	api          *goslack.Client
	channelID    string
	dashboardURL string
	logger       *slog.Logger
}

// NewService creates a Slack notification service. Returns nil (disabling
// delivery) when token or channel is empty.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Token == "" || cfg.Channel == "" {
		return nil
	}
	return &Service{
		api:          goslack.New(cfg.Token),
		channelID:    cfg.Channel,
		dashboardURL: cfg.DashboardURL,
		logger:       slog.Default().With("component", "notify-service"),
	}
}

// NewServiceWithAPIURL creates a Service targeting a custom Slack API URL.
// Useful for testing with a mock server.
func NewServiceWithAPIURL(cfg ServiceConfig, apiURL string) *Service {
	s := NewService(cfg)
	if s != nil {
		s.api = goslack.New(cfg.Token, goslack.OptionAPIURL(apiURL))
	}
	return s
}

// NotifyAssessmentCompleted posts a terminal notification with the ranking
// summary. Fail-open: errors are logged, never returned.
func (s *Service) NotifyAssessmentCompleted(ctx context.Context, input AssessmentCompletedInput) {
	if s == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, postTimeout)
	defer cancel()

	blocks := s.completionBlocks(input)
	_, _, err := s.api.PostMessageContext(ctx, s.channelID,
		goslack.MsgOptionBlocks(blocks...))
	if err != nil {
		s.logger.Warn("Slack notification failed",
			"assessment_id", input.AssessmentID, "error", err)
		return
	}
	s.logger.Info("Slack notification sent", "assessment_id", input.AssessmentID)
}

func (s *Service) completionBlocks(input AssessmentCompletedInput) []goslack.Block {
	icon := ":white_check_mark:"
	if input.Status != "completed" {
		icon = ":x:"
	}

	header := goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("%s *SQL benchmark assessment `%s` %s*\n%s",
				icon, input.AssessmentID, input.Status, input.Message),
			false, false),
		nil, nil)
	blocks := []goslack.Block{header}

	if input.Artifact != nil {
		var rankingText string
		for _, r := range input.Artifact.Rankings {
			rankingText += fmt.Sprintf("%d. *%s* — %.2f%%\n",
				r.Rank, r.ParticipantID, r.OverallScore*100)
		}
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, rankingText, false, false),
			nil, nil))
	}

	if s.dashboardURL != "" {
		blocks = append(blocks, goslack.NewContextBlock("",
			goslack.NewTextBlockObject(goslack.MarkdownType,
				fmt.Sprintf("<%s/assessments/%s|View details>", s.dashboardURL, input.AssessmentID),
				false, false)))
	}
	return blocks
}
