package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"surveyflow/internal/cache"
	"surveyflow/internal/engine"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

// SurveyService handles catalog authoring and catalog reads
type SurveyService struct {
	surveyRepo   repository.SurveyRepo
	answerRepo   repository.AnswerRepo
	catalogCache cache.CatalogCache
	answerCache  cache.AnswerCache
}

// NewSurveyService creates a new survey service
func NewSurveyService(surveyRepo repository.SurveyRepo, answerRepo repository.AnswerRepo, catalogCache cache.CatalogCache, answerCache cache.AnswerCache) *SurveyService {
	return &SurveyService{
		surveyRepo:   surveyRepo,
		answerRepo:   answerRepo,
		catalogCache: catalogCache,
		answerCache:  answerCache,
	}
}

// Create validates and stores a new survey
func (s *SurveyService) Create(ctx context.Context, survey *model.Survey, createdBy string) (string, error) {
	if err := prepareSurvey(survey); err != nil {
		return "", err
	}
	survey.CreatedBy = createdBy

	id, err := s.surveyRepo.Create(ctx, survey)
	if errors.Is(err, repository.ErrDuplicateQuestion) {
		return "", fmt.Errorf("%w: %v", ErrInvalidSurvey, err)
	}
	if err != nil {
		return "", err
	}
	log.Printf("[SurveyService] created survey %s (%s, %d questions)", id, survey.Flow, len(survey.Questions))
	return id, nil
}

// GetByID retrieves a survey by ID
func (s *SurveyService) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	return survey, nil
}

// List returns all surveys, optionally limited to one flow
func (s *SurveyService) List(ctx context.Context, flow model.SurveyFlow) ([]*model.Survey, error) {
	if flow != "" && !flow.Valid() {
		return nil, fmt.Errorf("%w: unknown flow %q", ErrInvalidSurvey, flow)
	}
	return s.surveyRepo.List(ctx, flow)
}

// Update replaces the authored content of a survey
func (s *SurveyService) Update(ctx context.Context, survey *model.Survey) error {
	if err := prepareSurvey(survey); err != nil {
		return err
	}

	err := s.surveyRepo.Update(ctx, survey)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrSurveyNotFound
	case errors.Is(err, repository.ErrDuplicateQuestion):
		return fmt.Errorf("%w: %v", ErrInvalidSurvey, err)
	case err != nil:
		return err
	}
	s.invalidate(ctx, survey.ID)
	return nil
}

// Delete removes a survey and every answer given to it, including the
// copies in the answer cache. Question ids may be reused by a later
// survey, so a cached answer must not outlive its stored one.
func (s *SurveyService) Delete(ctx context.Context, id string) error {
	err := s.surveyRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSurveyNotFound
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)

	answers, err := s.answerRepo.ListBySurvey(ctx, id)
	if err != nil {
		log.Printf("[SurveyService] survey %s: listing answers for eviction: %v", id, err)
	}
	n, err := s.answerRepo.DeleteBySurvey(ctx, id)
	if err != nil {
		log.Printf("[SurveyService] survey %s deleted but its answers were not: %v", id, err)
		return nil
	}
	// evict after the stored answers are gone so a concurrent read cannot
	// repopulate the cache from them
	for _, a := range answers {
		if err := s.answerCache.Delete(ctx, a.UserID, a.QuestionID); err != nil {
			log.Printf("[SurveyService] answer cache evict user=%s question=%s: %v", a.UserID, a.QuestionID, err)
		}
	}
	log.Printf("[SurveyService] deleted survey %s and %d answers", id, n)
	return nil
}

// Catalog returns the raw question records of a survey, read through the
// catalog cache
func (s *SurveyService) Catalog(ctx context.Context, surveyID string) ([]model.RawQuestion, error) {
	questions, err := s.catalogCache.Get(ctx, surveyID)
	if err != nil {
		log.Printf("[SurveyService] catalog cache read %s: %v", surveyID, err)
	}
	if questions != nil {
		return questions, nil
	}

	survey, err := s.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	questions = survey.Questions
	if questions == nil {
		questions = []model.RawQuestion{}
	}
	if err := s.catalogCache.Set(ctx, surveyID, questions); err != nil {
		log.Printf("[SurveyService] catalog cache write %s: %v", surveyID, err)
	}
	return questions, nil
}

// FindQuestion returns the survey that owns questionID and the question in
// normalized form
func (s *SurveyService) FindQuestion(ctx context.Context, questionID string) (*model.Survey, model.Question, error) {
	survey, err := s.surveyRepo.GetByQuestionID(ctx, questionID)
	if err != nil {
		return nil, model.Question{}, err
	}
	if survey == nil {
		return nil, model.Question{}, ErrQuestionNotFound
	}

	for _, raw := range survey.Questions {
		if strings.TrimSpace(raw.ID) != questionID {
			continue
		}
		q, err := engine.NormalizeQuestion(raw)
		if err != nil {
			return nil, model.Question{}, fmt.Errorf("survey %s: %w", survey.ID, err)
		}
		return survey, q, nil
	}
	return nil, model.Question{}, ErrQuestionNotFound
}

func (s *SurveyService) invalidate(ctx context.Context, surveyID string) {
	if err := s.catalogCache.Delete(ctx, surveyID); err != nil {
		log.Printf("[SurveyService] catalog cache delete %s: %v", surveyID, err)
	}
}

// prepareSurvey assigns missing question and option ids, then checks that
// the catalog is one the session engine can run
func prepareSurvey(survey *model.Survey) error {
	survey.Title = strings.TrimSpace(survey.Title)
	if survey.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidSurvey)
	}
	if survey.Flow == "" {
		survey.Flow = model.FlowLive
	}
	if !survey.Flow.Valid() {
		return fmt.Errorf("%w: unknown flow %q", ErrInvalidSurvey, survey.Flow)
	}
	if survey.RewardPoints < 0 {
		return fmt.Errorf("%w: rewardPoints must not be negative", ErrInvalidSurvey)
	}

	for i := range survey.Questions {
		q := &survey.Questions[i]
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		for j := range q.Options {
			o := &q.Options[j]
			o.ID = strings.TrimSpace(o.ID)
			if o.ID == "" {
				o.ID = uuid.New().String()
			}
		}
	}

	if _, err := engine.NormalizeCatalog(survey.Questions); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSurvey, err)
	}
	return nil
}
