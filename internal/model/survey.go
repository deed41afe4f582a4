package model

import "time"

// SurveyFlow names the product surface a survey is shown in
type SurveyFlow string

const (
	FlowOnboarding SurveyFlow = "onboarding"
	FlowProfile    SurveyFlow = "profile"
	FlowLive       SurveyFlow = "live"
)

// Valid reports whether f is a known flow
func (f SurveyFlow) Valid() bool {
	switch f {
	case FlowOnboarding, FlowProfile, FlowLive:
		return true
	}
	return false
}

// Survey is a catalog authored by an admin
type Survey struct {
	ID           string        `json:"id" bson:"_id,omitempty"`
	Title        string        `json:"title" bson:"title" yaml:"title"`
	Description  string        `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Flow         SurveyFlow    `json:"flow" bson:"flow" yaml:"flow"`
	RewardPoints int           `json:"rewardPoints" bson:"rewardPoints" yaml:"rewardPoints"`
	Questions    []RawQuestion `json:"questions" bson:"questions" yaml:"questions"`
	CreatedBy    string        `json:"createdBy,omitempty" bson:"createdBy,omitempty" yaml:"-"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// Completion records that a user submitted a survey
type Completion struct {
	SurveyID     string    `json:"surveyId" bson:"surveyId"`
	UserID       string    `json:"userId" bson:"userId"`
	RewardPoints int       `json:"rewardPoints" bson:"rewardPoints"`
	CompletedAt  time.Time `json:"completedAt" bson:"completedAt"`
}

// CompleteSurveyResponse is returned by POST /v1/surveys/{surveyId}/complete
type CompleteSurveyResponse struct {
	Completion       *Completion `json:"completion"`
	AlreadyCompleted bool        `json:"alreadyCompleted"`
}

// CatalogResponse is returned by GET /v1/surveys/{surveyId}/questions
type CatalogResponse struct {
	SurveyID  string        `json:"surveyId"`
	Questions []RawQuestion `json:"questions"`
}
