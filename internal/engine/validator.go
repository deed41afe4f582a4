package engine

import (
	"fmt"

	"surveyflow/internal/model"
)

const (
	ReasonAnswerRequired    = "answer required"
	ReasonSelectionRequired = "selection required"
)

// Validate decides whether a may be submitted for q. It returns nil when
// valid and a *ValidationError otherwise.
func Validate(q model.Question, a model.Answer) error {
	if !q.IsRequired {
		return nil
	}

	if q.Kind == model.KindFreeText {
		if model.IsBlank(a.TextAnswer) {
			return &ValidationError{QuestionID: q.ID, Reason: ReasonAnswerRequired}
		}
		return nil
	}

	if len(a.SelectedOptionIDs) == 0 {
		return &ValidationError{QuestionID: q.ID, Reason: ReasonSelectionRequired}
	}
	return nil
}

// CheckShape verifies that a structurally fits q: selected options exist,
// single choice has at most one pick, and text is only sent for free text.
// The backend uses it before storing an answer.
func CheckShape(q model.Question, a model.Answer) error {
	if a.QuestionID != q.ID {
		return fmt.Errorf("%w: answer for %q sent to %q", ErrInvalidEdit, a.QuestionID, q.ID)
	}

	switch q.Kind {
	case model.KindFreeText:
		if len(a.SelectedOptionIDs) > 0 {
			return fmt.Errorf("%w: free-text question takes no options", ErrInvalidEdit)
		}
	default:
		if a.TextAnswer != "" {
			return fmt.Errorf("%w: choice question takes no text", ErrInvalidEdit)
		}
		if q.Kind == model.KindSingleChoice && len(a.SelectedOptionIDs) > 1 {
			return fmt.Errorf("%w: single choice allows one option", ErrInvalidEdit)
		}
		seen := make(map[string]bool, len(a.SelectedOptionIDs))
		for _, id := range a.SelectedOptionIDs {
			if !q.HasOption(id) {
				return fmt.Errorf("%w: %q", ErrUnknownOption, id)
			}
			if seen[id] {
				return fmt.Errorf("%w: option %q selected twice", ErrInvalidEdit, id)
			}
			seen[id] = true
		}
	}
	return nil
}
