package api

import (
	"errors"
	"net/http"
	"net/url"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/sqlbench/pkg/services"
)

// submitAssessmentHandler handles POST /api/v1/assessments.
// Launches the assessment in the background and returns immediately with its
// id; progress streams over the WebSocket channel.
func (s *Server) submitAssessmentHandler(c *echo.Context) error {
	var req SubmitAssessmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if len(req.Participants) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "participants field is required")
	}
	for pid, endpoint := range req.Participants {
		u, err := url.Parse(endpoint)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return echo.NewHTTPError(http.StatusBadRequest,
				"participant "+pid+" has an invalid endpoint URL")
		}
	}

	assessmentID := s.assessmentService.Start(req.Participants, req.Config)

	return c.JSON(http.StatusAccepted, &AssessmentResponse{
		AssessmentID: assessmentID,
		Status:       "submitted",
		Message:      "Assessment submitted for processing",
	})
}

// getAssessmentHandler handles GET /api/v1/assessments/:id.
// Returns the current lifecycle state, including the artifact once complete.
func (s *Server) getAssessmentHandler(c *echo.Context) error {
	state, err := s.assessmentService.Get(c.Param("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, state)
}

// cancelAssessmentHandler handles POST /api/v1/assessments/:id/cancel.
// Cancellation is observed between tasks; the stream closes with a terminal
// failed update.
func (s *Server) cancelAssessmentHandler(c *echo.Context) error {
	if err := s.assessmentService.Cancel(c.Param("id")); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"status": "cancelling",
	})
}

// mapServiceError maps service-layer errors to HTTP error responses.
func mapServiceError(err error) *echo.HTTPError {
	if errors.Is(err, services.ErrAssessmentNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
