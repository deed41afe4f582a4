package model

// QuestionTypeTag is the type tag carried by server question records
type QuestionTypeTag string

const (
	TagText              QuestionTypeTag = "TEXT"
	TagSingleSelection   QuestionTypeTag = "SINGLE_SELECTION"
	TagMultipleSelection QuestionTypeTag = "MULTIPLE_SELECTION"
)

// QuestionKind is the normalized question kind used by the engine
type QuestionKind string

const (
	KindFreeText     QuestionKind = "FREE_TEXT"
	KindSingleChoice QuestionKind = "SINGLE_CHOICE"
	KindMultiChoice  QuestionKind = "MULTI_CHOICE"
)

// IsChoice reports whether answers are given by selecting options
func (k QuestionKind) IsChoice() bool {
	return k == KindSingleChoice || k == KindMultiChoice
}

// RawOption is an option as stored and served by the backend
type RawOption struct {
	ID    string `json:"id" bson:"id" yaml:"id"`
	Label string `json:"label" bson:"label" yaml:"label"`
	Order *int   `json:"order,omitempty" bson:"order,omitempty" yaml:"order,omitempty"`
}

// RawQuestion is a question record as stored and served by the backend.
// IsRequired is a pointer so an omitted flag can default to true.
type RawQuestion struct {
	ID          string          `json:"id" bson:"id" yaml:"id"`
	Title       string          `json:"title" bson:"title" yaml:"title"`
	Description string          `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Type        QuestionTypeTag `json:"type" bson:"type" yaml:"type"`
	Options     []RawOption     `json:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"`
	IsRequired  *bool           `json:"isRequired,omitempty" bson:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	Placeholder string          `json:"placeholder,omitempty" bson:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// Option is one selectable choice of a question
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

// InputField describes the text input of a free-text question (cosmetic only)
type InputField struct {
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}

// Question is one normalized prompt of a survey
type Question struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Kind        QuestionKind `json:"kind"`
	Options     []Option     `json:"options"`
	Input       *InputField  `json:"input,omitempty"`
	IsRequired  bool         `json:"isRequired"`
}

// HasOption reports whether optionID belongs to the question
func (q *Question) HasOption(optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
