package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

func strPtr(s string) *string { return &s }

func TestHostedSessionWalkthrough(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()
	id := b.createExample(t)

	view, err := b.sessions.Start(ctx, "u1", id)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if view.Status != model.SessionActive || view.Progress != (model.Progress{Current: 1, Total: 3}) {
		t.Fatalf("start view %+v", view)
	}
	if view.Question == nil || view.Question.ID != "q1" || view.Question.Input == nil {
		t.Fatalf("first question %+v", view.Question)
	}

	view, err = b.sessions.Advance(ctx, "u1", id)
	var verr *engine.ValidationError
	if !errors.As(err, &verr) || view.ValidationError != engine.ReasonAnswerRequired {
		t.Fatalf("expected validation error, got %v (%+v)", err, view)
	}

	if _, err := b.sessions.Edit("u1", id, model.SessionEditRequest{Text: strPtr("ok")}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if view, err = b.sessions.Advance(ctx, "u1", id); err != nil || view.Progress.Current != 2 {
		t.Fatalf("advance q1: %v (%+v)", err, view.Progress)
	}

	for _, opt := range []string{"A", "B"} {
		if _, err := b.sessions.Edit("u1", id, model.SessionEditRequest{OptionID: opt}); err != nil {
			t.Fatalf("Edit %s: %v", opt, err)
		}
	}
	if view, err = b.sessions.Advance(ctx, "u1", id); err != nil || view.Progress.Current != 3 {
		t.Fatalf("advance q2: %v (%+v)", err, view.Progress)
	}
	saved, _ := b.answers.GetSaved(ctx, "u1", "q2")
	if saved == nil || !reflect.DeepEqual(saved.SelectedOptionIDs, []string{"B"}) {
		t.Errorf("q2 stored as %+v", saved)
	}

	view, err = b.sessions.Advance(ctx, "u1", id)
	if err != nil {
		t.Fatalf("advance q3: %v", err)
	}
	if view.Status != model.SessionCompleted || view.Question != nil {
		t.Errorf("final view %+v", view)
	}
	if b.sessions.Len() != 0 {
		t.Error("completed session still hosted")
	}
	if _, err := b.sessions.View("u1", id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("view after completion: %v", err)
	}
	if c, _ := b.completionRepo.Get(ctx, id, "u1"); c == nil {
		t.Error("completion not recorded")
	}
	if b.events.count(EventSessionStarted) != 1 || b.events.count(EventAnswerSaved) != 3 {
		t.Errorf("events: %+v", b.events.events)
	}
}

func TestHostedSessionResumes(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()
	id := b.createExample(t)

	if _, err := b.sessions.Start(ctx, "u1", id); err != nil {
		t.Fatal(err)
	}
	if _, err := b.sessions.Edit("u1", id, model.SessionEditRequest{Text: strPtr("first visit")}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.sessions.Advance(ctx, "u1", id); err != nil {
		t.Fatal(err)
	}
	if err := b.sessions.Abandon("u1", id); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if err := b.sessions.Abandon("u1", id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second abandon: %v", err)
	}

	view, err := b.sessions.Start(ctx, "u1", id)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if view.Progress.Current != 1 || view.Answer == nil || view.Answer.TextAnswer != "first visit" {
		t.Errorf("resumed view %+v", view)
	}

	other, err := b.sessions.Start(ctx, "u2", id)
	if err != nil {
		t.Fatal(err)
	}
	if !other.Answer.IsEmpty() {
		t.Errorf("another user's answer leaked: %+v", other.Answer)
	}
}

func TestStartReplacesPreviousSession(t *testing.T) {
	b := newTestBackend()
	ctx := context.Background()
	id := b.createExample(t)

	if _, err := b.sessions.Start(ctx, "u1", id); err != nil {
		t.Fatal(err)
	}
	if _, err := b.sessions.Edit("u1", id, model.SessionEditRequest{Text: strPtr("draft")}); err != nil {
		t.Fatal(err)
	}
	view, err := b.sessions.Start(ctx, "u1", id)
	if err != nil {
		t.Fatal(err)
	}
	if !view.Answer.IsEmpty() {
		t.Errorf("unsaved draft carried into new session: %+v", view.Answer)
	}
	if b.sessions.Len() != 1 {
		t.Errorf("hosted sessions: %d", b.sessions.Len())
	}
}

func TestStartUnknownSurvey(t *testing.T) {
	b := newTestBackend()
	_, err := b.sessions.Start(context.Background(), "u1", "missing")
	if !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("expected ErrSurveyNotFound, got %v", err)
	}
	var cerr *engine.CatalogError
	if !errors.As(err, &cerr) {
		t.Errorf("expected *engine.CatalogError, got %T", err)
	}
	if b.sessions.Len() != 0 {
		t.Error("failed session kept")
	}
}

func TestSessionEditErrors(t *testing.T) {
	b := newTestBackend()
	id := b.createExample(t)

	if _, err := b.sessions.Edit("u1", id, model.SessionEditRequest{Text: strPtr("x")}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("edit without session: %v", err)
	}
	if _, err := b.sessions.Start(context.Background(), "u1", id); err != nil {
		t.Fatal(err)
	}
	if _, err := b.sessions.Edit("u1", id, model.SessionEditRequest{OptionID: "A"}); !errors.Is(err, engine.ErrInvalidEdit) {
		t.Errorf("option on free text: %v", err)
	}
	view, err := b.sessions.Retreat("u1", id)
	if err != nil || view.Progress.Current != 1 {
		t.Errorf("retreat at first step: %v (%+v)", err, view.Progress)
	}
}

func TestSweepIdleSessions(t *testing.T) {
	b := newTestBackend()
	id := b.createExample(t)

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	b.sessions.now = func() time.Time { return now }

	if _, err := b.sessions.Start(context.Background(), "u1", id); err != nil {
		t.Fatal(err)
	}
	if _, err := b.sessions.Start(context.Background(), "u2", id); err != nil {
		t.Fatal(err)
	}

	now = now.Add(45 * time.Second)
	if _, err := b.sessions.View("u2", id); err != nil {
		t.Fatal(err)
	}

	now = now.Add(30 * time.Second)
	if n := b.sessions.sweepIdle(); n != 1 {
		t.Fatalf("swept %d sessions, want 1", n)
	}
	if _, err := b.sessions.View("u1", id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("idle session survived: %v", err)
	}
	if _, err := b.sessions.View("u2", id); err != nil {
		t.Errorf("active session swept: %v", err)
	}
}

func TestLocalPersistenceRefusesOtherUsers(t *testing.T) {
	b := newTestBackend()
	p := NewLocalPersistence("u1", b.surveys, b.answers, b.completions)
	if _, err := p.FetchSavedAnswer(context.Background(), "u2", "q1"); !errors.Is(err, engine.ErrUnauthorized) {
		t.Errorf("got %v", err)
	}
}
