package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/sqlbench/pkg/models"
)

func TestNewServiceRequiresCredentials(t *testing.T) {
	assert.Nil(t, NewService(ServiceConfig{}))
	assert.Nil(t, NewService(ServiceConfig{Token: "xoxb-test"}))
	assert.Nil(t, NewService(ServiceConfig{Channel: "C123"}))
	assert.NotNil(t, NewService(ServiceConfig{Token: "xoxb-test", Channel: "C123"}))
}

func TestNilServiceIsNoOp(t *testing.T) {
	var s *Service
	// Must not panic.
	s.NotifyAssessmentCompleted(context.Background(), AssessmentCompletedInput{
		AssessmentID: "ab12cd34",
		Status:       "completed",
	})
}

func TestNotifyAssessmentCompleted(t *testing.T) {
	var posts atomic.Int32
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		assert.Contains(t, r.URL.Path, "chat.postMessage")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true, "channel": "C123", "ts": "1234.5678"}`))
	}))
	defer mock.Close()

	svc := NewServiceWithAPIURL(ServiceConfig{
		Token:        "xoxb-test",
		Channel:      "C123",
		DashboardURL: "https://bench.example.com",
	}, mock.URL+"/")
	require.NotNil(t, svc)

	svc.NotifyAssessmentCompleted(context.Background(), AssessmentCompletedInput{
		AssessmentID: "ab12cd34",
		Status:       "completed",
		Message:      "Assessment complete",
		Artifact: &models.AssessmentArtifact{
			Rankings: []models.RankedParticipant{
				{Rank: 1, ParticipantID: "agent-a", OverallScore: 0.95},
			},
		},
	})

	assert.Equal(t, int32(1), posts.Load())
}

func TestNotifyFailureIsSwallowed(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))
	defer mock.Close()

	svc := NewServiceWithAPIURL(ServiceConfig{Token: "xoxb-test", Channel: "C999"}, mock.URL+"/")
	require.NotNil(t, svc)

	// Fail-open: no panic, no error surfaced.
	svc.NotifyAssessmentCompleted(context.Background(), AssessmentCompletedInput{
		AssessmentID: "ab12cd34",
		Status:       "failed",
	})
}
