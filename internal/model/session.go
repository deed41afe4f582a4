package model

// SessionStatus is the state of an answer session
type SessionStatus string

const (
	SessionLoading    SessionStatus = "loading"
	SessionActive     SessionStatus = "active"
	SessionSubmitting SessionStatus = "submitting"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
)

// Progress is the 1-based position of the current step
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// SessionView is what the presentation layer renders for a session
type SessionView struct {
	SurveyID        string        `json:"surveyId"`
	UserID          string        `json:"userId"`
	Status          SessionStatus `json:"status"`
	Progress        Progress      `json:"progress"`
	Question        *Question     `json:"question,omitempty"`
	Answer          *Answer       `json:"answer,omitempty"`
	ValidationError string        `json:"validationError,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
	Error           string        `json:"error,omitempty"`
}

// SessionEditRequest is the body of PATCH /v1/sessions/{surveyId}/answer
type SessionEditRequest struct {
	Text     *string `json:"text,omitempty"`
	OptionID string  `json:"optionId,omitempty"`
}
