package engine

import (
	"fmt"

	"surveyflow/internal/model"
)

// AnswerStore holds the current answer of every question in a catalog.
// It never persists anything; the controller decides when to save.
// AnswerStore is not safe for concurrent use.
type AnswerStore struct {
	questions map[string]model.Question
	answers   map[string]model.Answer
}

// NewAnswerStore creates a store for the given catalog with no entries
func NewAnswerStore(questions []model.Question) *AnswerStore {
	s := &AnswerStore{
		questions: make(map[string]model.Question, len(questions)),
		answers:   make(map[string]model.Answer, len(questions)),
	}
	for _, q := range questions {
		s.questions[q.ID] = q
	}
	return s
}

// Seed installs an initial answer without treating it as a user edit.
// Content that no longer fits the question (stale options, text on a
// choice question) is dropped.
func (s *AnswerStore) Seed(questionID string, a model.Answer) error {
	q, ok := s.questions[questionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	s.answers[questionID] = coerce(q, a)
	return nil
}

// Get returns a copy of the current answer
func (s *AnswerStore) Get(questionID string) (model.Answer, bool) {
	a, ok := s.answers[questionID]
	if !ok {
		return model.Answer{}, false
	}
	return a.Clone(), true
}

// Set overwrites the answer of a question. Unknown option ids are rejected;
// a single-choice answer keeps only its last selected option.
func (s *AnswerStore) Set(questionID string, a model.Answer) error {
	q, ok := s.questions[questionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	for _, id := range a.SelectedOptionIDs {
		if !q.HasOption(id) {
			return fmt.Errorf("%w: %s", ErrUnknownOption, id)
		}
	}
	s.answers[questionID] = coerce(q, a)
	return nil
}

// Select applies a click on an option: single choice replaces the
// selection, multi choice toggles membership.
func (s *AnswerStore) Select(questionID, optionID string) error {
	q, ok := s.questions[questionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if !q.Kind.IsChoice() {
		return fmt.Errorf("%w: %s is free text", ErrInvalidEdit, questionID)
	}
	if !q.HasOption(optionID) {
		return fmt.Errorf("%w: %s", ErrUnknownOption, optionID)
	}

	cur := s.current(questionID)
	if q.Kind == model.KindSingleChoice {
		cur.SelectedOptionIDs = []string{optionID}
		s.answers[questionID] = cur
		return nil
	}

	if cur.HasOption(optionID) {
		kept := cur.SelectedOptionIDs[:0]
		for _, id := range cur.SelectedOptionIDs {
			if id != optionID {
				kept = append(kept, id)
			}
		}
		cur.SelectedOptionIDs = kept
	} else {
		cur.SelectedOptionIDs = append(cur.SelectedOptionIDs, optionID)
	}
	s.answers[questionID] = cur
	return nil
}

// SetText replaces the text of a free-text answer
func (s *AnswerStore) SetText(questionID, text string) error {
	q, ok := s.questions[questionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if q.Kind != model.KindFreeText {
		return fmt.Errorf("%w: %s takes options", ErrInvalidEdit, questionID)
	}
	cur := s.current(questionID)
	cur.TextAnswer = text
	s.answers[questionID] = cur
	return nil
}

// Len returns the number of seeded or set answers
func (s *AnswerStore) Len() int {
	return len(s.answers)
}

func (s *AnswerStore) current(questionID string) model.Answer {
	if a, ok := s.answers[questionID]; ok {
		return a.Clone()
	}
	return model.EmptyAnswer(questionID)
}

func coerce(q model.Question, a model.Answer) model.Answer {
	out := model.EmptyAnswer(q.ID)
	if q.Kind == model.KindFreeText {
		out.TextAnswer = a.TextAnswer
		return out
	}
	for _, id := range a.SelectedOptionIDs {
		if q.HasOption(id) && !out.HasOption(id) {
			out.SelectedOptionIDs = append(out.SelectedOptionIDs, id)
		}
	}
	if q.Kind == model.KindSingleChoice && len(out.SelectedOptionIDs) > 1 {
		out.SelectedOptionIDs = out.SelectedOptionIDs[len(out.SelectedOptionIDs)-1:]
	}
	return out
}
