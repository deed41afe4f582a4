package engine

import (
	"errors"
	"reflect"
	"testing"

	"surveyflow/internal/model"
)

func newExampleStore(t *testing.T) *AnswerStore {
	t.Helper()
	questions, err := NormalizeCatalog(exampleCatalog())
	if err != nil {
		t.Fatalf("NormalizeCatalog: %v", err)
	}
	return NewAnswerStore(questions)
}

func TestSingleChoiceSelectionIsExclusive(t *testing.T) {
	s := newExampleStore(t)

	for _, id := range []string{"A", "B", "A", "B", "B"} {
		if err := s.Select("q2", id); err != nil {
			t.Fatalf("Select(%s): %v", id, err)
		}
		a, _ := s.Get("q2")
		if len(a.SelectedOptionIDs) > 1 {
			t.Fatalf("single choice holds %v", a.SelectedOptionIDs)
		}
	}
	a, _ := s.Get("q2")
	if !reflect.DeepEqual(a.SelectedOptionIDs, []string{"B"}) {
		t.Errorf("selection = %v, want [B]", a.SelectedOptionIDs)
	}

	if err := s.Set("q2", model.Answer{QuestionID: "q2", SelectedOptionIDs: []string{"A", "B"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	a, _ = s.Get("q2")
	if !reflect.DeepEqual(a.SelectedOptionIDs, []string{"B"}) {
		t.Errorf("Set kept %v, want last pick [B]", a.SelectedOptionIDs)
	}
}

func TestMultiChoiceSelectionToggles(t *testing.T) {
	s := newExampleStore(t)

	steps := []struct {
		click string
		want  []string
	}{
		{"X", []string{"X"}},
		{"Z", []string{"X", "Z"}},
		{"X", []string{"Z"}},
		{"Y", []string{"Z", "Y"}},
		{"Z", []string{"Y"}},
		{"Y", []string{}},
	}
	for _, st := range steps {
		if err := s.Select("q3", st.click); err != nil {
			t.Fatalf("Select(%s): %v", st.click, err)
		}
		a, _ := s.Get("q3")
		if !reflect.DeepEqual(a.SelectedOptionIDs, st.want) {
			t.Fatalf("after %s: %v, want %v", st.click, a.SelectedOptionIDs, st.want)
		}
	}
}

func TestStoreRejectsBadEdits(t *testing.T) {
	s := newExampleStore(t)

	if err := s.Select("q2", "nope"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("unknown option: %v", err)
	}
	if err := s.Select("q1", "A"); !errors.Is(err, ErrInvalidEdit) {
		t.Errorf("select on free text: %v", err)
	}
	if err := s.SetText("q2", "hello"); !errors.Is(err, ErrInvalidEdit) {
		t.Errorf("text on choice: %v", err)
	}
	if err := s.SetText("missing", "hello"); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("unknown question: %v", err)
	}
	if err := s.Set("q3", model.Answer{QuestionID: "q3", SelectedOptionIDs: []string{"W"}}); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("Set with unknown option: %v", err)
	}
}

func TestSeedDropsStaleContent(t *testing.T) {
	s := newExampleStore(t)

	err := s.Seed("q3", model.Answer{QuestionID: "q3", SelectedOptionIDs: []string{"X", "gone", "X"}, TextAnswer: "leftover"})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	a, _ := s.Get("q3")
	if !reflect.DeepEqual(a.SelectedOptionIDs, []string{"X"}) || a.TextAnswer != "" {
		t.Errorf("seeded %+v", a)
	}

	if err := s.Seed("q1", model.Answer{TextAnswer: "hello"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	a, _ = s.Get("q1")
	if a.QuestionID != "q1" || a.TextAnswer != "hello" {
		t.Errorf("seeded %+v", a)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := newExampleStore(t)
	if err := s.Select("q3", "X"); err != nil {
		t.Fatal(err)
	}
	a, _ := s.Get("q3")
	a.SelectedOptionIDs[0] = "mutated"

	b, _ := s.Get("q3")
	if b.SelectedOptionIDs[0] != "X" {
		t.Errorf("store was mutated through Get: %v", b.SelectedOptionIDs)
	}
}
