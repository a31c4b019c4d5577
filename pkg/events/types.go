// Package events provides real-time progress delivery for assessments via an
// in-process broadcaster and WebSocket connections.
//
// Every assessment publishes its TaskUpdate stream on a dedicated channel;
// clients subscribe and unsubscribe over the WebSocket control protocol.
// Updates are transient — a client that reconnects mid-assessment fetches the
// final artifact over REST instead of replaying missed updates.
package events

// GlobalAssessmentsChannel carries lifecycle updates for every assessment.
// The assessment list view subscribes to this.
const GlobalAssessmentsChannel = "assessments"

// AssessmentChannel returns the channel name for one assessment's updates.
// Format: "assessment:{assessment_id}"
func AssessmentChannel(assessmentID string) string {
	return "assessment:" + assessmentID
}

// ClientMessage is the JSON structure for client → server WebSocket messages.
type ClientMessage struct {
	Action  string `json:"action"`            // "subscribe", "unsubscribe", "ping"
	Channel string `json:"channel,omitempty"` // e.g. "assessment:ab12cd34"
}

// ServerMessage is the JSON structure for server → client WebSocket messages.
type ServerMessage struct {
	Type    string `json:"type"`              // "update", "subscribed", "unsubscribed", "pong", "error"
	Channel string `json:"channel,omitempty"`
	Payload any    `json:"payload,omitempty"`
	Message string `json:"message,omitempty"`
}
