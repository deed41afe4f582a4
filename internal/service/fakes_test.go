package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"surveyflow/internal/cache"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

type fakeSurveyRepo struct {
	mu      sync.Mutex
	seq     int
	surveys map[string]*model.Survey
	lookups int
}

func newFakeSurveyRepo() *fakeSurveyRepo {
	return &fakeSurveyRepo{surveys: map[string]*model.Survey{}}
}

func copySurvey(s *model.Survey) *model.Survey {
	cp := *s
	cp.Questions = append([]model.RawQuestion(nil), s.Questions...)
	return &cp
}

func (r *fakeSurveyRepo) questionTaken(id, exceptSurvey string) bool {
	for sid, s := range r.surveys {
		if sid == exceptSurvey {
			continue
		}
		for _, q := range s.Questions {
			if q.ID == id {
				return true
			}
		}
	}
	return false
}

func (r *fakeSurveyRepo) Create(ctx context.Context, survey *model.Survey) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range survey.Questions {
		if r.questionTaken(q.ID, "") {
			return "", repository.ErrDuplicateQuestion
		}
	}
	r.seq++
	survey.ID = fmt.Sprintf("survey-%d", r.seq)
	r.surveys[survey.ID] = copySurvey(survey)
	return survey.ID, nil
}

func (r *fakeSurveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}
	return copySurvey(s), nil
}

func (r *fakeSurveyRepo) GetByQuestionID(ctx context.Context, questionID string) (*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.surveys {
		for _, q := range s.Questions {
			if q.ID == questionID {
				return copySurvey(s), nil
			}
		}
	}
	return nil, nil
}

func (r *fakeSurveyRepo) List(ctx context.Context, flow model.SurveyFlow) ([]*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Survey{}
	for _, s := range r.surveys {
		if flow == "" || s.Flow == flow {
			out = append(out, copySurvey(s))
		}
	}
	return out, nil
}

func (r *fakeSurveyRepo) Update(ctx context.Context, survey *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surveys[survey.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, q := range survey.Questions {
		if r.questionTaken(q.ID, survey.ID) {
			return repository.ErrDuplicateQuestion
		}
	}
	r.surveys[survey.ID] = copySurvey(survey)
	return nil
}

func (r *fakeSurveyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surveys[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.surveys, id)
	return nil
}

type fakeAnswerRepo struct {
	mu      sync.Mutex
	answers map[string]*model.SavedAnswer
	upserts int
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: map[string]*model.SavedAnswer{}}
}

func (r *fakeAnswerRepo) Upsert(ctx context.Context, a *model.SavedAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	cp := *a
	r.answers[a.UserID+"/"+a.QuestionID] = &cp
	return nil
}

func (r *fakeAnswerRepo) Get(ctx context.Context, userID, questionID string) (*model.SavedAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.answers[userID+"/"+questionID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAnswerRepo) ListByUserSurvey(ctx context.Context, userID, surveyID string) ([]*model.SavedAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.SavedAnswer{}
	for _, a := range r.answers {
		if a.UserID == userID && a.SurveyID == surveyID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) ListBySurvey(ctx context.Context, surveyID string) ([]*model.SavedAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.SavedAnswer{}
	for _, a := range r.answers {
		if a.SurveyID == surveyID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) DeleteBySurvey(ctx context.Context, surveyID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, a := range r.answers {
		if a.SurveyID == surveyID {
			delete(r.answers, k)
			n++
		}
	}
	return n, nil
}

type fakeCompletionRepo struct {
	mu          sync.Mutex
	completions map[string]*model.Completion
}

func newFakeCompletionRepo() *fakeCompletionRepo {
	return &fakeCompletionRepo{completions: map[string]*model.Completion{}}
}

func (r *fakeCompletionRepo) Record(ctx context.Context, c *model.Completion) (*model.Completion, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := c.SurveyID + "/" + c.UserID
	if existing, ok := r.completions[key]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *c
	r.completions[key] = &cp
	return c, true, nil
}

func (r *fakeCompletionRepo) Get(ctx context.Context, surveyID, userID string) (*model.Completion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.completions[surveyID+"/"+userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompletionRepo) ListBySurvey(ctx context.Context, surveyID string) ([]*model.Completion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Completion{}
	for _, c := range r.completions {
		if c.SurveyID == surveyID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeCatalogCache struct {
	mu       sync.Mutex
	catalogs map[string][]model.RawQuestion
}

func (c *fakeCatalogCache) Set(ctx context.Context, surveyID string, questions []model.RawQuestion) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalogs == nil {
		c.catalogs = map[string][]model.RawQuestion{}
	}
	c.catalogs[surveyID] = append([]model.RawQuestion{}, questions...)
	return nil
}

func (c *fakeCatalogCache) Get(ctx context.Context, surveyID string) ([]model.RawQuestion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalogs[surveyID], nil
}

func (c *fakeCatalogCache) Delete(ctx context.Context, surveyID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.catalogs, surveyID)
	return nil
}

type fakeAnswerCache struct {
	mu      sync.Mutex
	answers map[string]*model.SavedAnswer
	setErr  error
}

func (c *fakeAnswerCache) Set(ctx context.Context, a *model.SavedAnswer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	if c.answers == nil {
		c.answers = map[string]*model.SavedAnswer{}
	}
	cp := *a
	c.answers[a.UserID+"/"+a.QuestionID] = &cp
	return nil
}

func (c *fakeAnswerCache) Get(ctx context.Context, userID, questionID string) (*model.SavedAnswer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.answers[userID+"/"+questionID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (c *fakeAnswerCache) Delete(ctx context.Context, userID, questionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.answers, userID+"/"+questionID)
	return nil
}

type recordedEvent struct {
	surveyID string
	msgType  string
	payload  interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToSurvey(surveyID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{surveyID, msgType, payload})
}

func (b *recordingBroadcaster) count(msgType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.msgType == msgType {
			n++
		}
	}
	return n
}

// testBackend wires every service over in-memory fakes
type testBackend struct {
	surveyRepo     *fakeSurveyRepo
	answerRepo     *fakeAnswerRepo
	completionRepo *fakeCompletionRepo
	catalogCache   *fakeCatalogCache
	answerCache    *fakeAnswerCache
	events         *recordingBroadcaster

	surveys     *SurveyService
	answers     *AnswerService
	completions *CompletionService
	sessions    *SessionService
}

func newTestBackend() *testBackend {
	b := &testBackend{
		surveyRepo:     newFakeSurveyRepo(),
		answerRepo:     newFakeAnswerRepo(),
		completionRepo: newFakeCompletionRepo(),
		catalogCache:   &fakeCatalogCache{},
		answerCache:    &fakeAnswerCache{},
		events:         &recordingBroadcaster{},
	}
	b.surveys = NewSurveyService(b.surveyRepo, b.answerRepo, b.catalogCache, b.answerCache)
	b.answers = NewAnswerService(b.answerRepo, b.answerCache, b.surveys)
	b.completions = NewCompletionService(b.completionRepo, b.surveys)
	b.sessions = NewSessionService(b.surveys, b.answers, b.completions, 4, time.Minute)

	b.answers.SetBroadcaster(b.events)
	b.completions.SetBroadcaster(b.events)
	b.sessions.SetBroadcaster(b.events)
	return b
}

func boolPtr(v bool) *bool { return &v }

// exampleSurvey has a required free-text question, a required single
// choice {A,B} and an optional multi choice {X,Y,Z}
func exampleSurvey() *model.Survey {
	return &model.Survey{
		Title:        "Onboarding",
		Flow:         model.FlowOnboarding,
		RewardPoints: 25,
		Questions: []model.RawQuestion{
			{ID: "q1", Title: "What brings you here?", Type: model.TagText},
			{ID: "q2", Title: "Pick one", Type: model.TagSingleSelection, Options: []model.RawOption{
				{ID: "A", Label: "Alpha"}, {ID: "B", Label: "Beta"},
			}},
			{ID: "q3", Title: "Pick any", Type: model.TagMultipleSelection, IsRequired: boolPtr(false), Options: []model.RawOption{
				{ID: "X", Label: "Ex"}, {ID: "Y", Label: "Why"}, {ID: "Z", Label: "Zed"},
			}},
		},
	}
}

func (b *testBackend) createExample(t *testing.T) string {
	t.Helper()
	id, err := b.surveys.Create(context.Background(), exampleSurvey(), "admin_test")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return id
}

type fakeRewardBoard struct {
	points map[string]int
	err    error
}

func (b *fakeRewardBoard) Add(ctx context.Context, userID string, points int) error {
	if b.err != nil {
		return b.err
	}
	b.points[userID] += points
	return nil
}

func (b *fakeRewardBoard) Top(ctx context.Context, limit int) ([]cache.RewardEntry, error) {
	out := []cache.RewardEntry{}
	for user, p := range b.points {
		out = append(out, cache.RewardEntry{UserID: user, Points: p})
	}
	return out, nil
}

func (b *fakeRewardBoard) Total(ctx context.Context, userID string) (cache.RewardEntry, error) {
	return cache.RewardEntry{UserID: userID, Points: b.points[userID]}, nil
}
