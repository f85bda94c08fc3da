package service

import (
	"math"

	"byteneko/internal/model"
)

// Stems, not words: "recomiend" catches recomienda/recomiende, and
// "recomend" the infinitive and conditional forms.
var loyaltyWords = []string{"recomend", "recomiend", "recommend", "nps", "likely"}

// FindLoyaltyQuestion picks the question that feeds the NPS block:
// the first numeric question whose label talks about recommending,
// otherwise the first scale question. Returns nil when the survey has
// no numeric question at all.
func FindLoyaltyQuestion(questions []*model.Question) *model.Question {
	for _, q := range questions {
		if !q.Type.IsNumeric() || q.Sensitivity != model.SensitivityValid {
			continue
		}
		if ContainsAny(q.Text, loyaltyWords...) {
			return q
		}
	}
	for _, q := range questions {
		if q.Type == model.QuestionTypeScale && q.Sensitivity == model.SensitivityValid {
			return q
		}
	}
	return nil
}

// CalculateNPS buckets scores into promoters (>=9), passives (7-8) and
// detractors (<=6) and returns the score rounded to one decimal. The
// score is nil, not zero, when there are no answers.
func CalculateNPS(questionID string, values []float64) *model.NPSResult {
	r := &model.NPSResult{QuestionID: questionID}
	for _, v := range values {
		switch {
		case v >= 9:
			r.Promoters++
		case v <= 6:
			r.Detractors++
		default:
			r.Passives++
		}
	}
	r.Total = len(values)
	if r.Total == 0 {
		return r
	}
	score := 100 * float64(r.Promoters-r.Detractors) / float64(r.Total)
	rounded := math.Round(score*10) / 10
	r.Score = &rounded
	return r
}
