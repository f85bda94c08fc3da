package model

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeScale  QuestionType = "scale"  // Numeric rating (1-5 or 1-10)
	QuestionTypeNumber QuestionType = "number" // Free numeric value
	QuestionTypeSingle QuestionType = "single" // Single choice
	QuestionTypeMulti  QuestionType = "multi"  // Multiple choice
	QuestionTypeText   QuestionType = "text"   // Open text
)

// IsNumeric reports whether the question yields numeric answer values.
func (t QuestionType) IsNumeric() bool {
	return t == QuestionTypeScale || t == QuestionTypeNumber
}

// IsChoice reports whether the question yields option-based answer values.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingle || t == QuestionTypeMulti
}

// Sensitivity is the privacy classification of a question, resolved once
// before aggregation and carried on the question from then on.
type Sensitivity string

const (
	SensitivityValid Sensitivity = "VALID" // Analyzable content question
	SensitivityDemo  Sensitivity = "DEMO"  // Demographic, analyzed with the clinical bank
	SensitivityPII   Sensitivity = "PII"   // Personal identifier, fully redacted
	SensitivityMeta  Sensitivity = "META"  // Technical metadata, fully redacted
)

// Redacted reports whether respondent content must never be surfaced.
func (s Sensitivity) Redacted() bool {
	return s == SensitivityPII || s == SensitivityMeta
}

// Question is a survey question definition
type Question struct {
	ID            string       `json:"id" bson:"_id,omitempty"`
	SurveyID      string       `json:"surveyId" bson:"surveyId"`
	Text          string       `json:"text" bson:"text"`
	Type          QuestionType `json:"type" bson:"type"`
	Order         int          `json:"order" bson:"order"`
	IsDemographic bool         `json:"isDemographic" bson:"isDemographic"`
	Options       []string     `json:"options,omitempty" bson:"options,omitempty"`
	ScaleMax      float64      `json:"scaleMax,omitempty" bson:"scaleMax,omitempty"`

	// Set by the sensitivity classifier, not persisted
	Sensitivity       Sensitivity `json:"sensitivity,omitempty" bson:"-"`
	SensitivityReason string      `json:"sensitivityReason,omitempty" bson:"-"`
}
