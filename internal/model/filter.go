package model

import "time"

// ResponseFilter is the typed predicate over a survey's responses. It is
// built once per analysis request and passed by reference into every
// aggregation call; the response repository compiles it to a store query.
type ResponseFilter struct {
	SurveyID string     `json:"surveyId"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`

	// Segment narrows to responses whose answer to SegmentQuestionID
	// matches SegmentValue (option label or text, case-insensitive).
	SegmentQuestionID string `json:"segmentQuestionId,omitempty"`
	SegmentValue      string `json:"segmentValue,omitempty"`
}
