package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"surveyflow/internal/cache"
	"surveyflow/internal/engine"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

// AnswerService stores and serves saved answers
type AnswerService struct {
	answerRepo  repository.AnswerRepo
	answerCache cache.AnswerCache
	surveys     *SurveyService
	broadcaster Broadcaster
	now         func() time.Time
}

// NewAnswerService creates a new answer service
func NewAnswerService(answerRepo repository.AnswerRepo, answerCache cache.AnswerCache, surveys *SurveyService) *AnswerService {
	return &AnswerService{
		answerRepo:  answerRepo,
		answerCache: answerCache,
		surveys:     surveys,
		now:         time.Now,
	}
}

// SetBroadcaster injects the WebSocket broadcaster
func (s *AnswerService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// GetSaved returns the saved answer of userID to questionID, or nil
func (s *AnswerService) GetSaved(ctx context.Context, userID, questionID string) (*model.SavedAnswer, error) {
	saved, err := s.answerCache.Get(ctx, userID, questionID)
	if err != nil {
		log.Printf("[AnswerService] cache read user=%s question=%s: %v", userID, questionID, err)
	}
	if saved != nil {
		return saved, nil
	}

	saved, err = s.answerRepo.Get(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, nil
	}
	if err := s.answerCache.Set(ctx, saved); err != nil {
		log.Printf("[AnswerService] cache write user=%s question=%s: %v", userID, questionID, err)
	}
	return saved, nil
}

// Save stores the answer of userID to questionID. The answer must fit the
// question; required-ness is not checked here.
func (s *AnswerService) Save(ctx context.Context, userID, questionID string, req model.SaveAnswerRequest) (*model.SavedAnswer, error) {
	survey, q, err := s.surveys.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	ids := req.SelectedOptionIDs
	if ids == nil {
		ids = []string{}
	}
	answer := model.Answer{QuestionID: questionID, SelectedOptionIDs: ids, TextAnswer: req.TextAnswer}
	if err := engine.CheckShape(q, answer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}

	saved := &model.SavedAnswer{
		UserID:            userID,
		SurveyID:          survey.ID,
		QuestionID:        questionID,
		SelectedOptionIDs: answer.SelectedOptionIDs,
		TextAnswer:        answer.TextAnswer,
		UpdatedAt:         s.now().UTC(),
	}
	if err := s.answerRepo.Upsert(ctx, saved); err != nil {
		return nil, err
	}
	if err := s.answerCache.Set(ctx, saved); err != nil {
		log.Printf("[AnswerService] cache write user=%s question=%s: %v", userID, questionID, err)
		// a stale cached answer would shadow the one just stored
		if err := s.answerCache.Delete(ctx, userID, questionID); err != nil {
			log.Printf("[AnswerService] cache evict user=%s question=%s: %v", userID, questionID, err)
		}
	}

	broadcast(s.broadcaster, survey.ID, EventAnswerSaved, ProgressEvent{
		SurveyID:   survey.ID,
		UserID:     userID,
		QuestionID: questionID,
	})
	return saved, nil
}

// ListForSurvey returns every answer userID saved for surveyID
func (s *AnswerService) ListForSurvey(ctx context.Context, userID, surveyID string) ([]*model.SavedAnswer, error) {
	if _, err := s.surveys.GetByID(ctx, surveyID); err != nil {
		return nil, err
	}
	return s.answerRepo.ListByUserSurvey(ctx, userID, surveyID)
}
