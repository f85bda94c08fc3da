package service

import (
	"byteneko/internal/model"
)

// Lower-is-better signals in a question label: wait times, complaints,
// incident counts. Their scores get mirrored before mood grading so
// that a short wait reads as EXCELLENT, not CRITICAL.
var invertedWords = []string{
	"espera", "demora", "wait", "queja", "quejas", "incidente",
	"incidentes", "tiempo de", "retraso", "delay", "complaint",
}

// IsInverted reports whether a numeric question measures something
// where lower values are better.
func IsInverted(label string) bool {
	return ContainsAny(label, invertedWords...)
}

// NormalizeScore maps an average onto the 0-10 band and applies
// polarity. scaleMax falls back to the observed maximum (at least 10)
// when the question declares none.
func NormalizeScore(avg, scaleMax, observedMax float64, inverted bool) (float64, float64) {
	if scaleMax <= 0 {
		scaleMax = observedMax
		if scaleMax < 10 {
			scaleMax = 10
		}
	}
	score := avg / scaleMax * 10
	if inverted {
		score = 10 - score
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score, scaleMax
}

// ClassifyMood grades a normalized 0-10 score.
func ClassifyMood(score float64) model.Mood {
	switch {
	case score >= 8.5:
		return model.MoodExcellent
	case score >= 7:
		return model.MoodGood
	case score >= 5:
		return model.MoodRegular
	default:
		return model.MoodCritical
	}
}

// Movements under a quarter point are reporting noise, not a trend.
const trendDeadBand = 0.25

// ClassifyTrend compares the trailing-window average against the
// overall average, both on the raw scale. For inverted questions the
// comparison flips: a falling wait time is an upward trend.
func ClassifyTrend(overall, trailing float64, inverted bool) model.Trend {
	delta := trailing - overall
	if inverted {
		delta = -delta
	}
	switch {
	case delta > trendDeadBand:
		return model.TrendUp
	case delta < -trendDeadBand:
		return model.TrendDown
	default:
		return model.TrendStable
	}
}

// ClassifyConsensus grades dispersion as a fraction of the scale span.
func ClassifyConsensus(stdDev, scaleMax float64) model.Consensus {
	if scaleMax <= 0 {
		return model.ConsensusNormal
	}
	ratio := stdDev / scaleMax
	switch {
	case ratio <= 0.15:
		return model.ConsensusHighAgreement
	case ratio >= 0.32:
		return model.ConsensusPolarized
	default:
		return model.ConsensusNormal
	}
}

// ClassifyTier turns mood plus trend into an action tier. A downward
// trend escalates one level: a GOOD question sliding down is already a
// quick win, not a watch item.
func ClassifyTier(mood model.Mood, trend model.Trend) model.Recommendation {
	var tier model.Recommendation
	switch mood {
	case model.MoodExcellent:
		tier = model.RecommendationMaintain
	case model.MoodGood:
		tier = model.RecommendationWatch
	case model.MoodRegular:
		tier = model.RecommendationQuickWin
	default:
		tier = model.RecommendationCritical
	}
	if trend == model.TrendDown {
		switch tier {
		case model.RecommendationMaintain:
			tier = model.RecommendationWatch
		case model.RecommendationWatch:
			tier = model.RecommendationQuickWin
		case model.RecommendationQuickWin:
			tier = model.RecommendationCritical
		}
	}
	return tier
}

// ClassifyScenario grades a categorical distribution sorted by count
// descending. Checks run from most to least specific.
func ClassifyScenario(items []model.DistItem) model.Scenario {
	if len(items) == 0 {
		return ScenarioOf(0, 0)
	}
	top := items[0].Percentage
	margin := top
	if len(items) > 1 {
		margin = top - items[1].Percentage
	}
	return scenarioFrom(top, margin)
}

// ScenarioOf is the two-argument form used when percentages are
// already at hand.
func ScenarioOf(top, margin float64) model.Scenario {
	return scenarioFrom(top, margin)
}

func scenarioFrom(top, margin float64) model.Scenario {
	switch {
	case top >= 50:
		return model.ScenarioAbsoluteMajority
	case top < 35 && margin < 10:
		return model.ScenarioFragmented
	case margin < 15:
		return model.ScenarioTightRace
	default:
		return model.ScenarioStrongLead
	}
}
