package model

import "time"

// Mood is the qualitative state of a numeric question's normalized score
type Mood string

const (
	MoodExcellent Mood = "EXCELLENT"
	MoodGood      Mood = "GOOD"
	MoodRegular   Mood = "REGULAR"
	MoodCritical  Mood = "CRITICAL"
)

// Trend compares the trailing-window average against the overall average
type Trend string

const (
	TrendUp     Trend = "UP"
	TrendDown   Trend = "DOWN"
	TrendStable Trend = "STABLE"
)

// Consensus measures answer dispersion relative to the scale span
type Consensus string

const (
	ConsensusHighAgreement Consensus = "HIGH_AGREEMENT"
	ConsensusPolarized     Consensus = "POLARIZED"
	ConsensusNormal        Consensus = "NORMAL"
)

// Recommendation is the action tier derived from mood and trend
type Recommendation string

const (
	RecommendationMaintain Recommendation = "maintain"
	RecommendationWatch    Recommendation = "watch"
	RecommendationQuickWin Recommendation = "quick-win"
	RecommendationCritical Recommendation = "critical"
)

// Scenario classifies a categorical distribution
type Scenario string

const (
	ScenarioAbsoluteMajority Scenario = "ABSOLUTE_MAJORITY"
	ScenarioFragmented       Scenario = "FRAGMENTED"
	ScenarioTightRace        Scenario = "TIGHT_RACE"
	ScenarioStrongLead       Scenario = "STRONG_LEAD"
)

// TimelineSource says where the activity curve's dates came from
type TimelineSource string

const (
	TimelineSourceContent TimelineSource = "CONTENT" // Parsed from a date question's values
	TimelineSourceSystem  TimelineSource = "SYSTEM"  // Submission timestamps fallback
	TimelineSourceNone    TimelineSource = "NONE"
)

// NumericStats are the aggregated statistics of a numeric question
type NumericStats struct {
	Count       int            `json:"count"`
	Average     float64        `json:"average"`
	Max         float64        `json:"max"`
	StdDev      float64        `json:"stdDev"`
	TrailingAvg float64        `json:"trailingAvg"` // Most recent 50 responses
	Score       float64        `json:"score"`       // Normalized to 0-10, polarity applied
	ScaleMax    float64        `json:"scaleMax"`
	Inverted    bool           `json:"inverted"` // Lower-is-better question
	Mood        Mood           `json:"mood"`
	Trend       Trend          `json:"trend"`
	Consensus   Consensus      `json:"consensus"`
	Tier        Recommendation `json:"tier"`
	Histogram   []DistItem     `json:"histogram,omitempty"`
}

// DistItem is one option (or numeric value) with its count
type DistItem struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution is the categorical result for a choice question
type Distribution struct {
	Total    int        `json:"total"`
	Items    []DistItem `json:"items"` // Sorted by count desc
	Scenario Scenario   `json:"scenario"`
}

// TextSummary is the mined result for an open-text question
type TextSummary struct {
	Total    int        `json:"total"`
	Keywords []DistItem `json:"keywords"`
	Bigrams  []DistItem `json:"bigrams,omitempty"`
	Samples  []string   `json:"samples"` // Capped sample of raw answers
}

// ChartPayload is the opaque rendered chart plus the data behind it
type ChartPayload struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
	Image  []byte   `json:"image,omitempty"`
}

// InsightItem is the per-question analysis result
type InsightItem struct {
	QuestionID     string        `json:"questionId"`
	Order          int           `json:"order"`
	Text           string        `json:"text"`
	Type           QuestionType  `json:"type"`
	Sensitivity    Sensitivity   `json:"sensitivity"`
	TotalResponses int           `json:"totalResponses"`
	Stats          *NumericStats `json:"stats,omitempty"`
	Distribution   *Distribution `json:"distribution,omitempty"`
	TextSummary    *TextSummary  `json:"textSummary,omitempty"`
	Narrative      string        `json:"narrative"`
	Chart          *ChartPayload `json:"chart,omitempty"`
	Redacted       bool          `json:"redacted"`
}

// NPSResult is the promoter/detractor split of the loyalty question
type NPSResult struct {
	QuestionID string   `json:"questionId,omitempty"`
	Score      *float64 `json:"score"` // nil when no responses
	Promoters  int      `json:"promoters"`
	Passives   int      `json:"passives"`
	Detractors int      `json:"detractors"`
	Total      int      `json:"total"`
}

// Timeline is the day-bucketed activity curve
type Timeline struct {
	Labels     []string       `json:"labels"` // Ordered day labels (YYYY-MM-DD)
	Data       []int          `json:"data"`
	Source     TimelineSource `json:"source"`
	Warning    string         `json:"warning,omitempty"`
	QuestionID string         `json:"questionId,omitempty"` // Date question used, if any
}

// IgnoredQuestion records why a question was excluded from analysis
type IgnoredQuestion struct {
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	Reason     string `json:"reason"`
}

// SummaryEntry is one highlighted question in the executive summary
type SummaryEntry struct {
	QuestionID string  `json:"questionId"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Mood       Mood    `json:"mood"`
}

// ExecutiveSummary condenses the report into a headline and extremes
type ExecutiveSummary struct {
	Headline   string         `json:"headline"`
	MoodLabel  Mood           `json:"moodLabel"`
	Highlights []SummaryEntry `json:"highlights"`
	Risks      []SummaryEntry `json:"risks"`
}

// AnalysisReport is the full per-survey snapshot
type AnalysisReport struct {
	SurveyID         string            `json:"surveyId"`
	Fingerprint      string            `json:"fingerprint"`
	TotalResponses   int               `json:"totalResponses"`
	AnalysisItems    []InsightItem     `json:"analysisItems"`
	GlobalKPI        *float64          `json:"globalKpi"`
	NPS              NPSResult         `json:"nps"`
	Timeline         Timeline          `json:"timeline"`
	IgnoredQuestions []IgnoredQuestion `json:"ignoredQuestions"`
	ExecutiveSummary ExecutiveSummary  `json:"executiveSummary"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}
