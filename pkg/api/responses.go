package api

// AssessmentResponse acknowledges an accepted assessment request.
type AssessmentResponse struct {
	AssessmentID string `json:"assessment_id"`
	Status       string `json:"status"`
	Message      string `json:"message"`
}
