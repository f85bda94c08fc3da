package model

import "time"

// AnswerValue holds one respondent's answer to one question. Exactly one
// of the value fields is set depending on the question type; choice
// questions may carry the raw label in TextValue on imported surveys.
type AnswerValue struct {
	QuestionID   string   `json:"questionId" bson:"questionId"`
	NumericValue *float64 `json:"numericValue,omitempty" bson:"numericValue,omitempty"`
	OptionText   string   `json:"optionText,omitempty" bson:"optionText,omitempty"`
	TextValue    string   `json:"textValue,omitempty" bson:"textValue,omitempty"`
}

// SurveyResponse is one respondent submission
type SurveyResponse struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	SurveyID    string        `json:"surveyId" bson:"surveyId"`
	SubmittedAt time.Time     `json:"submittedAt" bson:"submittedAt"`
	Answers     []AnswerValue `json:"answers" bson:"answers"`
}
