package engine

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrBusy            = errors.New("another step transition is in flight")
	ErrSessionClosed   = errors.New("session is closed")
	ErrNotActive       = errors.New("session is not active")
	ErrAlreadyLoaded   = errors.New("session already loaded")
	ErrUnknownQuestion = errors.New("question is not in the catalog")
	ErrUnknownOption   = errors.New("option does not belong to question")
	ErrInvalidEdit     = errors.New("edit does not fit question kind")
	ErrMissingIdentity = errors.New("survey id and user id are required")
)

// CatalogError means the catalog could not be fetched or was malformed.
// It is fatal for the session.
type CatalogError struct {
	SurveyID string
	Err      error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.SurveyID, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// SavedAnswerFetchError is logged per question while loading; the question
// is seeded empty and the session proceeds.
type SavedAnswerFetchError struct {
	QuestionID string
	Err        error
}

func (e *SavedAnswerFetchError) Error() string {
	return fmt.Sprintf("saved answer %s: %v", e.QuestionID, e.Err)
}

func (e *SavedAnswerFetchError) Unwrap() error { return e.Err }

// ValidationError is returned when the current answer does not satisfy its
// question. It never involves the network.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Reason)
}

// SaveError means persisting an answer failed. Advance still moves on
// unless the failure was an authorization error. An unauthorized save blocks
// the step and leaves the session Active rather than Failed, so the step can
// be retried once the credential is refreshed.
type SaveError struct {
	QuestionID string
	Err        error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save answer %s: %v", e.QuestionID, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// CompletionError means complete-survey failed. The session stays on the
// last step and Advance may be repeated.
type CompletionError struct {
	SurveyID string
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("complete survey %s: %v", e.SurveyID, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }
