package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"surveyflow/internal/model"
)

// DefaultPlaceholder is shown in free-text inputs when the record has none
const DefaultPlaceholder = "Type your answer here"

var (
	errEmptyCatalog = errors.New("catalog has no questions")
)

// NormalizeCatalog converts raw question records into the ordered question
// sequence. Required-ness defaults to true when the record omits it.
func NormalizeCatalog(raws []model.RawQuestion) ([]model.Question, error) {
	if len(raws) == 0 {
		return nil, errEmptyCatalog
	}

	questions := make([]model.Question, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for i, raw := range raws {
		q, err := NormalizeQuestion(raw)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("question %d: duplicate id %q", i+1, q.ID)
		}
		seen[q.ID] = true
		questions = append(questions, q)
	}
	return questions, nil
}

// NormalizeQuestion converts one raw record
func NormalizeQuestion(raw model.RawQuestion) (model.Question, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return model.Question{}, errors.New("missing id")
	}
	if strings.TrimSpace(raw.Title) == "" {
		return model.Question{}, fmt.Errorf("%s: missing title", id)
	}

	kind, err := kindOf(raw.Type)
	if err != nil {
		return model.Question{}, fmt.Errorf("%s: %w", id, err)
	}

	q := model.Question{
		ID:          id,
		Title:       raw.Title,
		Description: raw.Description,
		Kind:        kind,
		Options:     []model.Option{},
		IsRequired:  true,
	}
	if raw.IsRequired != nil {
		q.IsRequired = *raw.IsRequired
	}

	if kind == model.KindFreeText {
		placeholder := raw.Placeholder
		if placeholder == "" {
			placeholder = DefaultPlaceholder
		}
		q.Input = &model.InputField{Name: "textAnswer", Placeholder: placeholder}
		return q, nil
	}

	opts, err := normalizeOptions(raw.Options)
	if err != nil {
		return model.Question{}, fmt.Errorf("%s: %w", id, err)
	}
	q.Options = opts
	return q, nil
}

func kindOf(tag model.QuestionTypeTag) (model.QuestionKind, error) {
	switch tag {
	case model.TagText:
		return model.KindFreeText, nil
	case model.TagSingleSelection:
		return model.KindSingleChoice, nil
	case model.TagMultipleSelection:
		return model.KindMultiChoice, nil
	}
	return "", fmt.Errorf("unknown question type %q", tag)
}

// normalizeOptions keeps server order unless explicit order keys are given,
// in which case options are sorted stably by them.
func normalizeOptions(raws []model.RawOption) ([]model.Option, error) {
	if len(raws) == 0 {
		return nil, errors.New("choice question has no options")
	}

	opts := make([]model.Option, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for i, ro := range raws {
		oid := strings.TrimSpace(ro.ID)
		if oid == "" {
			return nil, fmt.Errorf("option %d: missing id", i+1)
		}
		if seen[oid] {
			return nil, fmt.Errorf("duplicate option id %q", oid)
		}
		seen[oid] = true

		order := i
		if ro.Order != nil {
			order = *ro.Order
		}
		opts = append(opts, model.Option{ID: oid, Label: ro.Label, Order: order})
	}

	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Order < opts[j].Order })
	return opts, nil
}
