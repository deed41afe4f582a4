package model

import (
	"strings"
	"time"
	"unicode"
)

// Answer is a user's current response to one question
type Answer struct {
	QuestionID        string   `json:"questionId" bson:"questionId"`
	SelectedOptionIDs []string `json:"selectedOptionIds" bson:"selectedOptionIds"`
	TextAnswer        string   `json:"textAnswer" bson:"textAnswer"`
}

// EmptyAnswer returns the empty answer for a question
func EmptyAnswer(questionID string) Answer {
	return Answer{QuestionID: questionID, SelectedOptionIDs: []string{}}
}

// IsEmpty reports whether nothing is selected and the text is blank
func (a Answer) IsEmpty() bool {
	return len(a.SelectedOptionIDs) == 0 && IsBlank(a.TextAnswer)
}

// IsBlank reports whether s holds nothing but whitespace. A byte order mark
// counts as whitespace, as it does for browser input.
func IsBlank(s string) bool {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	}) == ""
}

// HasOption reports whether optionID is selected
func (a Answer) HasOption(optionID string) bool {
	for _, id := range a.SelectedOptionIDs {
		if id == optionID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no memory with a
func (a Answer) Clone() Answer {
	ids := make([]string, len(a.SelectedOptionIDs))
	copy(ids, a.SelectedOptionIDs)
	a.SelectedOptionIDs = ids
	return a
}

// SavedAnswer is the stored form of an answer, one per user and question
type SavedAnswer struct {
	UserID            string    `json:"userId" bson:"userId"`
	SurveyID          string    `json:"surveyId" bson:"surveyId"`
	QuestionID        string    `json:"questionId" bson:"questionId"`
	SelectedOptionIDs []string  `json:"selectedOptionIds" bson:"selectedOptionIds"`
	TextAnswer        string    `json:"textAnswer" bson:"textAnswer"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Answer converts the stored record into an engine answer
func (s *SavedAnswer) Answer() Answer {
	a := Answer{
		QuestionID:        s.QuestionID,
		SelectedOptionIDs: s.SelectedOptionIDs,
		TextAnswer:        s.TextAnswer,
	}
	if a.SelectedOptionIDs == nil {
		a.SelectedOptionIDs = []string{}
	}
	return a.Clone()
}

// SaveAnswerRequest is the request body for PUT /v1/answers/{questionId}
type SaveAnswerRequest struct {
	SelectedOptionIDs []string `json:"selectedOptionIds"`
	TextAnswer        string   `json:"textAnswer"`
}
