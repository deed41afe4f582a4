package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"surveyflow/internal/model"
)

func TestSaveAnswer(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()
	id := b.createExample(t)

	saved, err := b.answers.Save(ctx, "u1", "q3", model.SaveAnswerRequest{SelectedOptionIDs: []string{"X", "Z"}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.SurveyID != id || saved.UserID != "u1" || saved.UpdatedAt.IsZero() {
		t.Errorf("saved %+v", saved)
	}
	if b.events.count(EventAnswerSaved) != 1 {
		t.Errorf("answer_saved events: %d", b.events.count(EventAnswerSaved))
	}

	// re-sending the same content keeps one record
	if _, err := b.answers.Save(ctx, "u1", "q3", model.SaveAnswerRequest{SelectedOptionIDs: []string{"X", "Z"}}); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if len(b.answerRepo.answers) != 1 {
		t.Errorf("records: %d", len(b.answerRepo.answers))
	}

	list, err := b.answers.ListForSurvey(ctx, "u1", id)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListForSurvey: %v, %v", list, err)
	}
}

func TestSaveAnswerRejects(t *testing.T) {
	b := newTestBackend()
	b.createExample(t)
	ctx := context.Background()

	cases := []struct {
		name       string
		questionID string
		req        model.SaveAnswerRequest
		want       error
	}{
		{"unknown question", "q9", model.SaveAnswerRequest{TextAnswer: "x"}, ErrQuestionNotFound},
		{"unknown option", "q2", model.SaveAnswerRequest{SelectedOptionIDs: []string{"C"}}, ErrInvalidAnswer},
		{"two picks on single choice", "q2", model.SaveAnswerRequest{SelectedOptionIDs: []string{"A", "B"}}, ErrInvalidAnswer},
		{"text on choice", "q3", model.SaveAnswerRequest{TextAnswer: "X"}, ErrInvalidAnswer},
		{"options on free text", "q1", model.SaveAnswerRequest{SelectedOptionIDs: []string{"A"}}, ErrInvalidAnswer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := b.answers.Save(ctx, "u1", tc.questionID, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
	if b.answerRepo.upserts != 0 {
		t.Errorf("rejected answers reached storage %d times", b.answerRepo.upserts)
	}
}

func TestGetSavedPrefersCache(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()
	b.createExample(t)

	if got, err := b.answers.GetSaved(ctx, "u1", "q1"); err != nil || got != nil {
		t.Fatalf("absent answer: %+v, %v", got, err)
	}

	if err := b.answerRepo.Upsert(ctx, &model.SavedAnswer{UserID: "u1", QuestionID: "q1", TextAnswer: "from db"}); err != nil {
		t.Fatal(err)
	}
	got, err := b.answers.GetSaved(ctx, "u1", "q1")
	if err != nil || got == nil || got.TextAnswer != "from db" {
		t.Fatalf("repo read: %+v, %v", got, err)
	}
	if cached, _ := b.answerCache.Get(ctx, "u1", "q1"); cached == nil {
		t.Error("repo read was not cached")
	}

	b.answerRepo.answers = map[string]*model.SavedAnswer{}
	got, err = b.answers.GetSaved(ctx, "u1", "q1")
	if err != nil || got == nil || got.TextAnswer != "from db" {
		t.Errorf("cache read: %+v, %v", got, err)
	}
}

func TestSaveEvictsWhenCacheWriteFails(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()
	b.createExample(t)

	if _, err := b.answers.Save(ctx, "u1", "q2", model.SaveAnswerRequest{SelectedOptionIDs: []string{"A"}}); err != nil {
		t.Fatal(err)
	}
	b.answerCache.setErr = errors.New("redis down")
	if _, err := b.answers.Save(ctx, "u1", "q2", model.SaveAnswerRequest{SelectedOptionIDs: []string{"B"}}); err != nil {
		t.Fatalf("Save with cache down: %v", err)
	}

	got, err := b.answers.GetSaved(ctx, "u1", "q2")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.SelectedOptionIDs, []string{"B"}) {
		t.Errorf("stale answer served: %v", got.SelectedOptionIDs)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()
	id := b.createExample(t)

	first, err := b.completions.Complete(ctx, "u1", id)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	second, err := b.completions.Complete(ctx, "u1", id)
	if err != nil {
		t.Fatalf("second Complete: %v", err)
	}

	if first.AlreadyCompleted || !second.AlreadyCompleted {
		t.Errorf("alreadyCompleted flags: %v, %v", first.AlreadyCompleted, second.AlreadyCompleted)
	}
	if !first.Completion.CompletedAt.Equal(second.Completion.CompletedAt) || second.Completion.RewardPoints != 25 {
		t.Errorf("completions differ: %+v vs %+v", first.Completion, second.Completion)
	}
	if n := b.events.count(EventSurveyCompleted); n != 1 {
		t.Errorf("survey_completed events: %d", n)
	}

	list, err := b.completions.ListBySurvey(ctx, id)
	if err != nil || len(list) != 1 {
		t.Errorf("ListBySurvey: %v, %v", list, err)
	}

	if _, err := b.completions.Complete(ctx, "u1", "missing"); !errors.Is(err, ErrSurveyNotFound) {
		t.Errorf("missing survey: %v", err)
	}
}

func TestCompleteCreditsRewardsOnce(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()
	id := b.createExample(t)

	board := &fakeRewardBoard{points: map[string]int{}}
	b.completions.SetRewardBoard(board)

	for i := 0; i < 2; i++ {
		if _, err := b.completions.Complete(ctx, "u1", id); err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}
	if got, _ := b.completions.RewardTotal(ctx, "u1"); got.Points != 25 {
		t.Errorf("u1 points = %d, want 25", got.Points)
	}

	// the completion still succeeds when the board is unavailable
	board.err = errors.New("redis down")
	resp, err := b.completions.Complete(ctx, "u2", id)
	if err != nil || resp.AlreadyCompleted {
		t.Fatalf("Complete with failing board: %+v, %v", resp, err)
	}
	if board.points["u2"] != 0 {
		t.Errorf("u2 credited despite failure")
	}
}
