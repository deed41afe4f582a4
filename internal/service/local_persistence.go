package service

import (
	"context"
	"fmt"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

// LocalPersistence runs a session controller against the services in the
// same process, acting as one user
type LocalPersistence struct {
	userID      string
	surveys     *SurveyService
	answers     *AnswerService
	completions *CompletionService
}

var _ engine.Persistence = (*LocalPersistence)(nil)

// NewLocalPersistence creates an in-process persistence for userID
func NewLocalPersistence(userID string, surveys *SurveyService, answers *AnswerService, completions *CompletionService) *LocalPersistence {
	return &LocalPersistence{
		userID:      userID,
		surveys:     surveys,
		answers:     answers,
		completions: completions,
	}
}

func (p *LocalPersistence) FetchCatalog(ctx context.Context, surveyID string) ([]model.RawQuestion, error) {
	return p.surveys.Catalog(ctx, surveyID)
}

func (p *LocalPersistence) FetchSavedAnswer(ctx context.Context, userID, questionID string) (*model.Answer, error) {
	if userID != p.userID {
		return nil, fmt.Errorf("%w: answers of %s", engine.ErrUnauthorized, userID)
	}
	saved, err := p.answers.GetSaved(ctx, userID, questionID)
	if err != nil || saved == nil {
		return nil, err
	}
	a := saved.Answer()
	return &a, nil
}

func (p *LocalPersistence) SaveAnswer(ctx context.Context, a model.Answer) error {
	_, err := p.answers.Save(ctx, p.userID, a.QuestionID, model.SaveAnswerRequest{
		SelectedOptionIDs: a.SelectedOptionIDs,
		TextAnswer:        a.TextAnswer,
	})
	return err
}

func (p *LocalPersistence) CompleteSurvey(ctx context.Context, surveyID string) error {
	_, err := p.completions.Complete(ctx, p.userID, surveyID)
	return err
}
