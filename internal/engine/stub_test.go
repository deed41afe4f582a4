package engine

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"surveyflow/internal/model"
)

type stubPersistence struct {
	mu sync.Mutex

	catalog    []model.RawQuestion
	catalogErr error

	saved      map[string]*model.Answer
	fetchErr   map[string]error
	fetchDelay map[string]time.Duration

	saveHook     func(ctx context.Context, a model.Answer) error
	completeErrs []error

	fetchOrder []string
	saves      []model.Answer
	completes  int
}

func (s *stubPersistence) FetchCatalog(ctx context.Context, surveyID string) ([]model.RawQuestion, error) {
	if s.catalogErr != nil {
		return nil, s.catalogErr
	}
	return s.catalog, nil
}

func (s *stubPersistence) FetchSavedAnswer(ctx context.Context, userID, questionID string) (*model.Answer, error) {
	if d := s.fetchDelay[questionID]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	s.fetchOrder = append(s.fetchOrder, questionID)
	s.mu.Unlock()

	if err := s.fetchErr[questionID]; err != nil {
		return nil, err
	}
	if a, ok := s.saved[questionID]; ok {
		cp := a.Clone()
		return &cp, nil
	}
	return nil, nil
}

func (s *stubPersistence) SaveAnswer(ctx context.Context, a model.Answer) error {
	if s.saveHook != nil {
		if err := s.saveHook(ctx, a); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, a.Clone())
	return nil
}

func (s *stubPersistence) CompleteSurvey(ctx context.Context, surveyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completes++
	if len(s.completeErrs) > 0 {
		err := s.completeErrs[0]
		s.completeErrs = s.completeErrs[1:]
		return err
	}
	return nil
}

func (s *stubPersistence) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

// exampleCatalog is the three-question survey: required free text,
// required single choice {A,B}, optional multi choice {X,Y,Z}.
func exampleCatalog() []model.RawQuestion {
	return []model.RawQuestion{
		{ID: "q1", Title: "What do you think?", Type: model.TagText},
		{ID: "q2", Title: "Pick one", Type: model.TagSingleSelection, Options: []model.RawOption{
			{ID: "A", Label: "Alpha"},
			{ID: "B", Label: "Beta"},
		}},
		{ID: "q3", Title: "Pick any", Type: model.TagMultipleSelection, IsRequired: boolPtr(false), Options: []model.RawOption{
			{ID: "X", Label: "Ex"},
			{ID: "Y", Label: "Why"},
			{ID: "Z", Label: "Zed"},
		}},
	}
}

func newTestController(p Persistence) *Controller {
	c, err := New(Config{
		SurveyID:    "s1",
		UserID:      "u1",
		Persistence: p,
		Logger:      log.New(io.Discard, "", 0),
	})
	if err != nil {
		panic(err)
	}
	return c
}
