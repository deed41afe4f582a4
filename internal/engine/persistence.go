package engine

import (
	"context"

	"surveyflow/internal/model"
)

// Persistence is the network boundary the session controller drives.
// Implementations return errors wrapping ErrUnauthorized when the caller's
// credential is missing or rejected.
type Persistence interface {
	// FetchCatalog returns the raw question records of a survey in
	// presentation order.
	FetchCatalog(ctx context.Context, surveyID string) ([]model.RawQuestion, error)

	// FetchSavedAnswer returns the previously saved answer, or nil if the
	// user never answered the question.
	FetchSavedAnswer(ctx context.Context, userID, questionID string) (*model.Answer, error)

	// SaveAnswer stores one answer. Re-sending the same content is safe.
	SaveAnswer(ctx context.Context, answer model.Answer) error

	// CompleteSurvey marks the survey submitted. Completing twice is safe.
	CompleteSurvey(ctx context.Context, surveyID string) error
}
