package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"byteneko/internal/cache"
	"byteneko/internal/config"
	"byteneko/internal/model"
	"byteneko/internal/repository"
)

// AnalysisOptions tune a single report generation.
type AnalysisOptions struct {
	IncludeCharts bool
	BypassCache   bool
}

// AnalysisService builds the full per-survey report: classification,
// batched aggregation, narratives, NPS, timeline and the executive
// summary, memoized behind a data-version fingerprint.
type AnalysisService struct {
	questions repository.QuestionRepo
	responses repository.ResponseStore
	cache     cache.ReportCache
	charts    ChartRenderer
	cfg       *config.Config
	log       *zap.Logger
}

func NewAnalysisService(
	questions repository.QuestionRepo,
	responses repository.ResponseStore,
	reportCache cache.ReportCache,
	charts ChartRenderer,
	cfg *config.Config,
	log *zap.Logger,
) *AnalysisService {
	if charts == nil {
		charts = NoopChartRenderer{}
	}
	return &AnalysisService{
		questions: questions,
		responses: responses,
		cache:     reportCache,
		charts:    charts,
		cfg:       cfg,
		log:       log,
	}
}

// Generate produces the analysis report for a survey under the given
// filter. Unsupported filters fail closed: the caller gets an empty,
// well-formed report and the incident is logged, never a partial one
// computed from a silently broadened query.
func (s *AnalysisService) Generate(ctx context.Context, surveyID string, filter *model.ResponseFilter, opts AnalysisOptions) (*model.AnalysisReport, error) {
	if filter == nil {
		filter = &model.ResponseFilter{SurveyID: surveyID}
	}
	filter.SurveyID = surveyID

	total, lastID, err := s.responses.CountAndLastID(ctx, filter)
	if err != nil {
		if errors.Is(err, repository.ErrUnsupportedFilter) {
			s.log.Warn("analysis filter rejected, returning empty report",
				zap.String("surveyId", surveyID))
			return emptyReport(surveyID), nil
		}
		return nil, err
	}

	fingerprint := cache.Fingerprint(surveyID, total, lastID)
	if !opts.BypassCache && s.cache != nil {
		if cached, err := s.cache.Get(ctx, fingerprint); err != nil {
			s.log.Warn("report cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	report := emptyReport(surveyID)
	report.Fingerprint = fingerprint
	report.TotalResponses = total

	questions, err := s.questions.GetBySurveyID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if total == 0 || len(questions) == 0 {
		report.ExecutiveSummary = buildSummary(report)
		s.store(ctx, fingerprint, report)
		return report, nil
	}

	for _, q := range questions {
		q.Sensitivity, q.SensitivityReason = Classify(q)
	}

	var dateQuestion *model.Question
	for i, q := range questions {
		if IsDateQuestion(q, i) {
			dateQuestion = q
			break
		}
	}

	var numericIDs, choiceIDs, textIDs []string
	for _, q := range questions {
		if q.Sensitivity.Redacted() || q == dateQuestion {
			continue
		}
		switch {
		case q.Type.IsNumeric():
			numericIDs = append(numericIDs, q.ID)
		case q.Type.IsChoice():
			choiceIDs = append(choiceIDs, q.ID)
		case q.Type == model.QuestionTypeText:
			textIDs = append(textIDs, q.ID)
		}
	}

	var (
		numeric map[string]*repository.NumericAggregate
		choices map[string][]repository.ValueCount
		texts   map[string][]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		numeric, err = s.responses.AggregateNumeric(gctx, filter, numericIDs, s.cfg.TrailingWin)
		return err
	})
	g.Go(func() error {
		var err error
		choices, err = s.responses.AggregateCategorical(gctx, filter, choiceIDs)
		return err
	})
	g.Go(func() error {
		var err error
		texts, err = s.responses.SampleTexts(gctx, filter, textIDs, s.cfg.TextSample)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrUnsupportedFilter) {
			s.log.Warn("analysis filter rejected mid-aggregation",
				zap.String("surveyId", surveyID))
			return emptyReport(surveyID), nil
		}
		return nil, err
	}

	narrCtx := NewNarrativeContext()
	var averages []float64

	for _, q := range questions {
		if q == dateQuestion {
			report.IgnoredQuestions = append(report.IgnoredQuestions, model.IgnoredQuestion{
				QuestionID: q.ID,
				Text:       q.Text,
				Reason:     "date column routed to the activity timeline",
			})
			continue
		}

		item := model.InsightItem{
			QuestionID:  q.ID,
			Order:       q.Order,
			Text:        q.Text,
			Type:        q.Type,
			Sensitivity: q.Sensitivity,
		}

		// Late identifier detection: a text column of unique id-shaped
		// values is metadata no matter what its label says.
		if q.Type == model.QuestionTypeText && !q.Sensitivity.Redacted() {
			if LooksLikeIdentifierColumn(texts[q.ID]) {
				q.Sensitivity = model.SensitivityMeta
				q.SensitivityReason = "values look like unique identifiers"
				item.Sensitivity = q.Sensitivity
			}
		}

		if q.Sensitivity.Redacted() {
			item.Redacted = true
			item.Narrative = ""
			report.IgnoredQuestions = append(report.IgnoredQuestions, model.IgnoredQuestion{
				QuestionID: q.ID,
				Text:       q.Text,
				Reason:     q.SensitivityReason,
			})
			report.AnalysisItems = append(report.AnalysisItems, item)
			continue
		}

		switch {
		case q.Type.IsNumeric():
			s.fillNumeric(&item, q, numeric[q.ID], narrCtx)
			if item.Stats != nil && item.Stats.Count > 0 && q.Sensitivity == model.SensitivityValid {
				averages = append(averages, item.Stats.Average)
			}
		case q.Type.IsChoice():
			s.fillCategorical(&item, q, choices[q.ID], narrCtx, opts)
		case q.Type == model.QuestionTypeText:
			if q.Sensitivity == model.SensitivityDemo {
				// Free-text demographics (city, department) behave as
				// categories: count the values, skip keyword mining.
				dist := distributionFromValues(texts[q.ID])
				item.Distribution = dist
				item.TotalResponses = dist.Total
				item.Narrative = DemographicNarrative(narrCtx, q, dist)
				break
			}
			item.TextSummary = SummarizeText(texts[q.ID], s.cfg.TextSample)
			item.TotalResponses = item.TextSummary.Total
			item.Narrative = TextNarrative(q, item.TextSummary)
		}
		if item.TotalResponses > total {
			item.TotalResponses = total
		}
		report.AnalysisItems = append(report.AnalysisItems, item)
	}

	// The KPI averages raw question means, not normalized scores.
	if len(averages) > 0 {
		if mean, err := stats.Mean(averages); err == nil {
			kpi := math.Round(mean*10) / 10
			report.GlobalKPI = &kpi
		}
	}

	s.fillNPS(report, questions, numeric)
	s.fillTimeline(ctx, report, filter, dateQuestion)
	report.ExecutiveSummary = buildSummary(report)

	s.store(ctx, fingerprint, report)
	return report, nil
}

func (s *AnalysisService) fillNumeric(item *model.InsightItem, q *model.Question, agg *repository.NumericAggregate, narrCtx *NarrativeContext) {
	if agg == nil || agg.Count == 0 {
		item.Narrative = TextNarrative(q, nil)
		return
	}
	inverted := IsInverted(q.Text)
	score, scaleMax := NormalizeScore(agg.Average, q.ScaleMax, agg.Max, inverted)

	trailing := agg.Average
	if len(agg.Recent) > 0 {
		if m, err := stats.Mean(agg.Recent); err == nil {
			trailing = m
		}
	}

	st := &model.NumericStats{
		Count:       agg.Count,
		Average:     round2(agg.Average),
		Max:         agg.Max,
		StdDev:      round2(agg.StdDev),
		TrailingAvg: round2(trailing),
		Score:       round2(score),
		ScaleMax:    scaleMax,
		Inverted:    inverted,
	}
	st.Mood = ClassifyMood(st.Score)
	st.Trend = ClassifyTrend(agg.Average, trailing, inverted)
	st.Consensus = ClassifyConsensus(agg.StdDev, scaleMax)
	st.Tier = ClassifyTier(st.Mood, st.Trend)
	st.Histogram = withPercentages(agg.Distribution, agg.Count)

	item.Stats = st
	item.TotalResponses = agg.Count
	if q.Sensitivity == model.SensitivityDemo {
		// A numeric demographic (age, tenure) is composition, not a
		// KPI: it gets the clinical bank and no mood grading.
		dist := &model.Distribution{Total: agg.Count, Items: st.Histogram}
		item.Narrative = DemographicNarrative(narrCtx, q, dist)
		return
	}
	item.Narrative = NumericNarrative(narrCtx, q, st)
}

func (s *AnalysisService) fillCategorical(item *model.InsightItem, q *model.Question, counts []repository.ValueCount, narrCtx *NarrativeContext, opts AnalysisOptions) {
	if q.Type == model.QuestionTypeMulti {
		counts = splitMultiSelect(counts)
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	dist := &model.Distribution{
		Total: total,
		Items: withPercentages(counts, total),
	}
	dist.Scenario = ClassifyScenario(dist.Items)
	item.Distribution = dist
	item.TotalResponses = total
	if q.Sensitivity == model.SensitivityDemo {
		item.Narrative = DemographicNarrative(narrCtx, q, dist)
	} else {
		item.Narrative = CategoricalNarrative(narrCtx, q, dist)
	}
	if opts.IncludeCharts {
		item.Chart = BuildChart(s.charts, dist.Items)
	}
}

func (s *AnalysisService) fillNPS(report *model.AnalysisReport, questions []*model.Question, numeric map[string]*repository.NumericAggregate) {
	loyalty := FindLoyaltyQuestion(questions)
	if loyalty == nil {
		return
	}
	agg := numeric[loyalty.ID]
	var values []float64
	if agg != nil {
		for _, vc := range agg.Distribution {
			v, err := strconv.ParseFloat(vc.Value, 64)
			if err != nil {
				continue
			}
			for i := 0; i < vc.Count; i++ {
				values = append(values, v)
			}
		}
	}
	report.NPS = *CalculateNPS(loyalty.ID, values)
}

func (s *AnalysisService) fillTimeline(ctx context.Context, report *model.AnalysisReport, filter *model.ResponseFilter, dateQuestion *model.Question) {
	var times []time.Time
	source := model.TimelineSourceNone
	questionID := ""

	if dateQuestion != nil {
		raw, err := s.responses.TextValuesForQuestion(ctx, filter, dateQuestion.ID)
		if err != nil {
			s.log.Warn("timeline date values unavailable", zap.Error(err))
		}
		for _, v := range raw {
			if t, ok := ParseSubmissionTime(v); ok {
				times = append(times, t)
			}
		}
		if len(times) > 0 {
			source = model.TimelineSourceContent
			questionID = dateQuestion.ID
		}
	}
	if len(times) == 0 {
		sys, err := s.responses.SubmissionTimes(ctx, filter)
		if err != nil {
			s.log.Warn("submission times unavailable", zap.Error(err))
		}
		if len(sys) > 0 {
			times = sys
			source = model.TimelineSourceSystem
		}
	}
	report.Timeline = *BuildTimeline(times, source, questionID)
}

func (s *AnalysisService) store(ctx context.Context, key string, report *model.AnalysisReport) {
	if s.cache == nil || report.Fingerprint == "" {
		return
	}
	if err := s.cache.Set(ctx, key, report); err != nil {
		s.log.Warn("report cache write failed", zap.Error(err))
	}
}

func emptyReport(surveyID string) *model.AnalysisReport {
	return &model.AnalysisReport{
		SurveyID:         surveyID,
		AnalysisItems:    []model.InsightItem{},
		IgnoredQuestions: []model.IgnoredQuestion{},
		Timeline:         model.Timeline{Source: model.TimelineSourceNone},
		GeneratedAt:      time.Now(),
	}
}

// splitMultiSelect expands "A, B; C" style combined answers into their
// individual options and re-merges the counts, busiest option first.
func splitMultiSelect(counts []repository.ValueCount) []repository.ValueCount {
	merged := make(map[string]int)
	var order []string
	for _, c := range counts {
		for _, part := range strings.FieldsFunc(c.Value, func(r rune) bool { return r == ',' || r == ';' }) {
			label := strings.TrimSpace(part)
			if label == "" {
				continue
			}
			if _, seen := merged[label]; !seen {
				order = append(order, label)
			}
			merged[label] += c.Count
		}
	}
	out := make([]repository.ValueCount, 0, len(order))
	for _, label := range order {
		out = append(out, repository.ValueCount{Value: label, Count: merged[label]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// distributionFromValues counts raw text values as categories.
func distributionFromValues(values []string) *model.Distribution {
	merged := make(map[string]int)
	var order []string
	total := 0
	for _, v := range values {
		label := strings.TrimSpace(v)
		if label == "" {
			continue
		}
		if _, seen := merged[label]; !seen {
			order = append(order, label)
		}
		merged[label]++
		total++
	}
	counts := make([]repository.ValueCount, 0, len(order))
	for _, label := range order {
		counts = append(counts, repository.ValueCount{Value: label, Count: merged[label]})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	dist := &model.Distribution{
		Total: total,
		Items: withPercentages(counts, total),
	}
	dist.Scenario = ClassifyScenario(dist.Items)
	return dist
}

func withPercentages(counts []repository.ValueCount, total int) []model.DistItem {
	items := make([]model.DistItem, 0, len(counts))
	for _, c := range counts {
		item := model.DistItem{Label: c.Value, Count: c.Count}
		if total > 0 {
			item.Percentage = math.Round(float64(c.Count)/float64(total)*1000) / 10
		}
		items = append(items, item)
	}
	return items
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// buildSummary picks the extremes among numeric questions with enough
// answers to be representative.
func buildSummary(report *model.AnalysisReport) model.ExecutiveSummary {
	const minSample = 5
	var entries []model.SummaryEntry
	for _, item := range report.AnalysisItems {
		if item.Redacted || item.Stats == nil || item.Stats.Count < minSample {
			continue
		}
		if item.Sensitivity != model.SensitivityValid {
			continue
		}
		entries = append(entries, model.SummaryEntry{
			QuestionID: item.QuestionID,
			Text:       item.Text,
			Score:      item.Stats.Score,
			Mood:       item.Stats.Mood,
		})
	}
	summary := model.ExecutiveSummary{}
	if len(entries) == 0 {
		if report.TotalResponses == 0 {
			summary.Headline = "Aún no hay respuestas suficientes para un resumen ejecutivo."
		} else {
			summary.Headline = "No hay indicadores numéricos con muestra suficiente para un resumen ejecutivo."
		}
		summary.MoodLabel = model.MoodRegular
		return summary
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	top := entries
	if len(top) > 3 {
		top = top[:3]
	}
	summary.Highlights = append(summary.Highlights, top...)

	bottom := entries
	if len(bottom) > 3 {
		bottom = bottom[len(bottom)-3:]
	}
	for i := len(bottom) - 1; i >= 0; i-- {
		summary.Risks = append(summary.Risks, bottom[i])
	}

	overall := 0.0
	if report.GlobalKPI != nil {
		overall = *report.GlobalKPI
	} else {
		for _, e := range entries {
			overall += e.Score
		}
		overall /= float64(len(entries))
	}
	summary.MoodLabel = ClassifyMood(overall)
	switch summary.MoodLabel {
	case model.MoodExcellent:
		summary.Headline = "La experiencia global del periodo es sobresaliente."
	case model.MoodGood:
		summary.Headline = "La experiencia global del periodo es positiva, con áreas puntuales a vigilar."
	case model.MoodRegular:
		summary.Headline = "La experiencia global del periodo es regular; hay margen claro de mejora."
	default:
		summary.Headline = "La experiencia global del periodo es crítica y requiere un plan de acción."
	}
	return summary
}
