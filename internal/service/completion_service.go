package service

import (
	"context"
	"log"
	"time"

	"surveyflow/internal/cache"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

// CompletionService records survey submissions
type CompletionService struct {
	completionRepo repository.CompletionRepo
	surveys        *SurveyService
	broadcaster    Broadcaster
	rewards        cache.RewardBoard
	now            func() time.Time
}

// NewCompletionService creates a new completion service
func NewCompletionService(completionRepo repository.CompletionRepo, surveys *SurveyService) *CompletionService {
	return &CompletionService{
		completionRepo: completionRepo,
		surveys:        surveys,
		now:            time.Now,
	}
}

// SetBroadcaster injects the WebSocket broadcaster
func (s *CompletionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetRewardBoard injects the board credited on each first completion
func (s *CompletionService) SetRewardBoard(b cache.RewardBoard) {
	s.rewards = b
}

// Complete marks surveyID submitted by userID. Completing again returns the
// original record with AlreadyCompleted set.
func (s *CompletionService) Complete(ctx context.Context, userID, surveyID string) (*model.CompleteSurveyResponse, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	completion, created, err := s.completionRepo.Record(ctx, &model.Completion{
		SurveyID:     survey.ID,
		UserID:       userID,
		RewardPoints: survey.RewardPoints,
		CompletedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if created {
		log.Printf("[CompletionService] user=%s completed survey=%s (+%d points)", userID, survey.ID, completion.RewardPoints)
		s.credit(ctx, userID, completion.RewardPoints)
		broadcast(s.broadcaster, survey.ID, EventSurveyCompleted, ProgressEvent{SurveyID: survey.ID, UserID: userID})
	}
	return &model.CompleteSurveyResponse{Completion: completion, AlreadyCompleted: !created}, nil
}

// ListBySurvey returns every completion of surveyID, newest first
func (s *CompletionService) ListBySurvey(ctx context.Context, surveyID string) ([]*model.Completion, error) {
	if _, err := s.surveys.GetByID(ctx, surveyID); err != nil {
		return nil, err
	}
	return s.completionRepo.ListBySurvey(ctx, surveyID)
}

// credit adds points to the reward board. The completion record is the
// source of truth, so a failed update is only logged.
func (s *CompletionService) credit(ctx context.Context, userID string, points int) {
	if s.rewards == nil || points <= 0 {
		return
	}
	if err := s.rewards.Add(ctx, userID, points); err != nil {
		log.Printf("[CompletionService] reward board update failed for user=%s: %v", userID, err)
	}
}

// TopRewards returns the users with the most reward points
func (s *CompletionService) TopRewards(ctx context.Context, limit int) ([]cache.RewardEntry, error) {
	if s.rewards == nil {
		return []cache.RewardEntry{}, nil
	}
	return s.rewards.Top(ctx, limit)
}

// RewardTotal returns userID's points and rank
func (s *CompletionService) RewardTotal(ctx context.Context, userID string) (cache.RewardEntry, error) {
	if s.rewards == nil {
		return cache.RewardEntry{UserID: userID}, nil
	}
	return s.rewards.Total(ctx, userID)
}
