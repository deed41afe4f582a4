package service

// Progress events sent to survey watchers
const (
	EventSessionStarted  = "session_started"
	EventAnswerSaved     = "answer_saved"
	EventSurveyCompleted = "survey_completed"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSurvey(surveyID string, msgType string, payload interface{})
}

// ProgressEvent is the payload of every progress event
type ProgressEvent struct {
	SurveyID   string `json:"surveyId"`
	UserID     string `json:"userId"`
	QuestionID string `json:"questionId,omitempty"`
	Step       int    `json:"step,omitempty"`
	Total      int    `json:"total,omitempty"`
}

func broadcast(b Broadcaster, surveyID, msgType string, payload interface{}) {
	if b == nil {
		return
	}
	b.BroadcastToSurvey(surveyID, msgType, payload)
}
