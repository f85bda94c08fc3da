package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"byteneko/internal/config"
	"byteneko/internal/model"
	"byteneko/internal/repository"
)

type fakeQuestions struct {
	items []*model.Question
}

func (f *fakeQuestions) Create(ctx context.Context, q *model.Question) error { return nil }
func (f *fakeQuestions) GetByID(ctx context.Context, id string) (*model.Question, error) {
	return nil, nil
}
func (f *fakeQuestions) GetBySurveyID(ctx context.Context, surveyID string) ([]*model.Question, error) {
	out := make([]*model.Question, len(f.items))
	for i, q := range f.items {
		copied := *q
		out[i] = &copied
	}
	return out, nil
}
func (f *fakeQuestions) Update(ctx context.Context, q *model.Question) error { return nil }
func (f *fakeQuestions) Delete(ctx context.Context, id string) error         { return nil }

type fakeStore struct {
	total      int
	lastID     string
	countErr   error
	numeric    map[string]*repository.NumericAggregate
	choices    map[string][]repository.ValueCount
	texts      map[string][]string
	textValues map[string][]string
	times      []time.Time
	aggCalls   int
}

func (f *fakeStore) Create(ctx context.Context, r *model.SurveyResponse) error { return nil }
func (f *fakeStore) CountAndLastID(ctx context.Context, filter *model.ResponseFilter) (int, string, error) {
	if f.countErr != nil {
		return 0, "", f.countErr
	}
	return f.total, f.lastID, nil
}
func (f *fakeStore) AggregateNumeric(ctx context.Context, filter *model.ResponseFilter, ids []string, window int) (map[string]*repository.NumericAggregate, error) {
	f.aggCalls++
	return f.numeric, nil
}
func (f *fakeStore) AggregateCategorical(ctx context.Context, filter *model.ResponseFilter, ids []string) (map[string][]repository.ValueCount, error) {
	return f.choices, nil
}
func (f *fakeStore) SampleTexts(ctx context.Context, filter *model.ResponseFilter, ids []string, limit int) (map[string][]string, error) {
	return f.texts, nil
}
func (f *fakeStore) TextValuesForQuestion(ctx context.Context, filter *model.ResponseFilter, questionID string) ([]string, error) {
	return f.textValues[questionID], nil
}
func (f *fakeStore) SubmissionTimes(ctx context.Context, filter *model.ResponseFilter) ([]time.Time, error) {
	return f.times, nil
}

type fakeCache struct {
	store map[string]*model.AnalysisReport
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]*model.AnalysisReport{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (*model.AnalysisReport, error) {
	return f.store[key], nil
}
func (f *fakeCache) Set(ctx context.Context, key string, report *model.AnalysisReport) error {
	f.sets++
	f.store[key] = report
	return nil
}
func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.store, key)
	return nil
}
func (f *fakeCache) InvalidateSurvey(ctx context.Context, surveyID string) error {
	for k := range f.store {
		if strings.Contains(k, ":"+surveyID+":") {
			delete(f.store, k)
		}
	}
	return nil
}

func newTestService(questions *fakeQuestions, store *fakeStore, c *fakeCache) *AnalysisService {
	cfg := &config.Config{TextSample: 150, TrailingWin: 50, CacheTTL: time.Hour}
	return NewAnalysisService(questions, store, c, NoopChartRenderer{}, cfg, zap.NewNop())
}

func scaleAgg(count int, avg float64) *repository.NumericAggregate {
	return &repository.NumericAggregate{Count: count, Average: avg, Max: 10, StdDev: 1.2}
}

func TestGenerateFailClosedOnBadFilter(t *testing.T) {
	store := &fakeStore{countErr: repository.ErrUnsupportedFilter}
	svc := newTestService(&fakeQuestions{}, store, newFakeCache())

	report, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "s1", report.SurveyID)
	assert.Equal(t, 0, report.TotalResponses)
	assert.Empty(t, report.AnalysisItems)
}

func TestGenerateRedactsPII(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q1", SurveyID: "s1", Text: "Satisfacción general", Type: model.QuestionTypeScale, ScaleMax: 10, Order: 0},
		{ID: "q2", SurveyID: "s1", Text: "Nombre del huésped", Type: model.QuestionTypeText, Order: 1},
	}}
	store := &fakeStore{
		total:   20,
		lastID:  "ff01",
		numeric: map[string]*repository.NumericAggregate{"q1": scaleAgg(20, 8.8)},
	}
	svc := newTestService(questions, store, newFakeCache())

	report, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	require.Len(t, report.AnalysisItems, 2)

	valid := report.AnalysisItems[0]
	assert.False(t, valid.Redacted)
	require.NotNil(t, valid.Stats)
	assert.Equal(t, model.MoodExcellent, valid.Stats.Mood)
	assert.NotEmpty(t, valid.Narrative)

	redacted := report.AnalysisItems[1]
	assert.True(t, redacted.Redacted)
	assert.Equal(t, model.SensitivityPII, redacted.Sensitivity)
	assert.Empty(t, redacted.Narrative)
	assert.Nil(t, redacted.TextSummary)

	require.Len(t, report.IgnoredQuestions, 1)
	assert.Equal(t, "q2", report.IgnoredQuestions[0].QuestionID)
}

func TestGenerateUsesCache(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q1", SurveyID: "s1", Text: "Satisfacción general", Type: model.QuestionTypeScale, ScaleMax: 10},
	}}
	store := &fakeStore{
		total:   10,
		lastID:  "ff02",
		numeric: map[string]*repository.NumericAggregate{"q1": scaleAgg(10, 7.5)},
	}
	reportCache := newFakeCache()
	svc := newTestService(questions, store, reportCache)

	first, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.aggCalls)
	assert.Equal(t, 1, reportCache.sets)

	second, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.aggCalls, "cache hit must skip aggregation")
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	// A new response moves the fingerprint and misses the cache.
	store.total = 11
	store.lastID = "ff03"
	_, err = svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, store.aggCalls)
}

func TestGenerateBypassCache(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q1", SurveyID: "s1", Text: "Satisfacción general", Type: model.QuestionTypeScale, ScaleMax: 10},
	}}
	store := &fakeStore{
		total:   10,
		lastID:  "ff02",
		numeric: map[string]*repository.NumericAggregate{"q1": scaleAgg(10, 7.5)},
	}
	svc := newTestService(questions, store, newFakeCache())

	_, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), "s1", nil, AnalysisOptions{BypassCache: true})
	require.NoError(t, err)
	assert.Equal(t, 2, store.aggCalls)
}

func TestGenerateGlobalKPI(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q1", SurveyID: "s1", Text: "Satisfacción con la habitación", Type: model.QuestionTypeScale, ScaleMax: 10},
		{ID: "q2", SurveyID: "s1", Text: "Satisfacción con el restaurante", Type: model.QuestionTypeScale, ScaleMax: 10},
	}}
	store := &fakeStore{
		total:  30,
		lastID: "ff04",
		numeric: map[string]*repository.NumericAggregate{
			"q1": scaleAgg(30, 8),
			"q2": scaleAgg(30, 6),
		},
	}
	svc := newTestService(questions, store, newFakeCache())

	report, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	require.NotNil(t, report.GlobalKPI)
	assert.Equal(t, 7.0, *report.GlobalKPI)
}

func TestGenerateTimelineFallsBackToSystem(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q1", SurveyID: "s1", Text: "Satisfacción general", Type: model.QuestionTypeScale, ScaleMax: 10},
	}}
	store := &fakeStore{
		total:   2,
		lastID:  "ff05",
		numeric: map[string]*repository.NumericAggregate{"q1": scaleAgg(2, 9)},
		times: []time.Time{
			time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC),
		},
	}
	svc := newTestService(questions, store, newFakeCache())

	report, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.TimelineSourceSystem, report.Timeline.Source)
	assert.Equal(t, []string{"2024-01-15", "2024-01-16"}, report.Timeline.Labels)
}

func TestGenerateRoutesDateQuestionToTimeline(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q0", SurveyID: "s1", Text: "Marca temporal", Type: model.QuestionTypeText, Order: 0},
		{ID: "q1", SurveyID: "s1", Text: "Satisfacción general", Type: model.QuestionTypeScale, ScaleMax: 10, Order: 1},
	}}
	store := &fakeStore{
		total:   2,
		lastID:  "ff06",
		numeric: map[string]*repository.NumericAggregate{"q1": scaleAgg(2, 9)},
		textValues: map[string][]string{
			"q0": {"2024-01-15 10:30:00", "15/01/2024"},
		},
	}
	svc := newTestService(questions, store, newFakeCache())

	report, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.TimelineSourceContent, report.Timeline.Source)
	assert.Equal(t, "q0", report.Timeline.QuestionID)
	assert.Equal(t, []string{"2024-01-15"}, report.Timeline.Labels)
	assert.Equal(t, []int{2}, report.Timeline.Data)

	// The date column never shows up as an insight.
	require.Len(t, report.AnalysisItems, 1)
	assert.Equal(t, "q1", report.AnalysisItems[0].QuestionID)
	require.Len(t, report.IgnoredQuestions, 1)
	assert.Equal(t, "q0", report.IgnoredQuestions[0].QuestionID)
}

func TestGenerateHardensIdentifierColumns(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q1", SurveyID: "s1", Text: "Código de confirmación", Type: model.QuestionTypeText},
	}}
	store := &fakeStore{
		total:  5,
		lastID: "ff07",
		texts: map[string][]string{
			"q1": {"RES-10293", "RES-10294", "RES-10295", "RES-10296", "RES-10297"},
		},
	}
	svc := newTestService(questions, store, newFakeCache())

	report, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	require.Len(t, report.AnalysisItems, 1)
	item := report.AnalysisItems[0]
	assert.True(t, item.Redacted)
	assert.Equal(t, model.SensitivityMeta, item.Sensitivity)
	assert.Nil(t, item.TextSummary)
}

func TestGenerateMultiSelectSplit(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q1", SurveyID: "s1", Text: "¿Qué servicios utilizó?", Type: model.QuestionTypeMulti},
	}}
	store := &fakeStore{
		total:  3,
		lastID: "ff08",
		choices: map[string][]repository.ValueCount{
			"q1": {
				{Value: "Piscina, Restaurante", Count: 2},
				{Value: "Restaurante", Count: 1},
			},
		},
	}
	svc := newTestService(questions, store, newFakeCache())

	report, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	require.Len(t, report.AnalysisItems, 1)
	dist := report.AnalysisItems[0].Distribution
	require.NotNil(t, dist)
	require.Len(t, dist.Items, 2)
	assert.Equal(t, "Restaurante", dist.Items[0].Label)
	assert.Equal(t, 3, dist.Items[0].Count)
	assert.Equal(t, "Piscina", dist.Items[1].Label)
	assert.Equal(t, 2, dist.Items[1].Count)
}

func TestGenerateEmptySurvey(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q1", SurveyID: "s1", Text: "Satisfacción general", Type: model.QuestionTypeScale, ScaleMax: 10},
	}}
	store := &fakeStore{total: 0, lastID: ""}
	svc := newTestService(questions, store, newFakeCache())

	report, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalResponses)
	assert.Empty(t, report.AnalysisItems)
	assert.Nil(t, report.GlobalKPI)
	assert.Equal(t, model.TimelineSourceNone, report.Timeline.Source)
	assert.Equal(t, 0, store.aggCalls)
	assert.NotEmpty(t, report.ExecutiveSummary.Headline)
}

func TestGenerateDemographicTextAsComposition(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q1", SurveyID: "s1", Text: "Ciudad de residencia", Type: model.QuestionTypeText},
	}}
	store := &fakeStore{
		total:  4,
		lastID: "ff0a",
		texts: map[string][]string{
			"q1": {"Bogotá", "Bogotá", "Lima", "Quito"},
		},
	}
	svc := newTestService(questions, store, newFakeCache())

	report, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	require.Len(t, report.AnalysisItems, 1)
	item := report.AnalysisItems[0]
	assert.Equal(t, model.SensitivityDemo, item.Sensitivity)
	assert.Nil(t, item.TextSummary)
	require.NotNil(t, item.Distribution)
	assert.Equal(t, "Bogotá", item.Distribution.Items[0].Label)
	assert.Equal(t, 2, item.Distribution.Items[0].Count)
	assert.Contains(t, item.Narrative, "Bogotá")
}

func TestGenerateNPSFromLoyaltyQuestion(t *testing.T) {
	questions := &fakeQuestions{items: []*model.Question{
		{ID: "q1", SurveyID: "s1", Text: "¿Qué tan probable es que recomiende el hotel?", Type: model.QuestionTypeScale, ScaleMax: 10},
	}}
	store := &fakeStore{
		total:  5,
		lastID: "ff09",
		numeric: map[string]*repository.NumericAggregate{
			"q1": {
				Count: 5, Average: 6.2, Max: 10, StdDev: 3.4,
				Distribution: []repository.ValueCount{
					{Value: "9", Count: 3},
					{Value: "2", Count: 2},
				},
			},
		},
	}
	svc := newTestService(questions, store, newFakeCache())

	report, err := svc.Generate(context.Background(), "s1", nil, AnalysisOptions{})
	require.NoError(t, err)
	assert.Equal(t, "q1", report.NPS.QuestionID)
	assert.Equal(t, 3, report.NPS.Promoters)
	assert.Equal(t, 2, report.NPS.Detractors)
	require.NotNil(t, report.NPS.Score)
	assert.Equal(t, 20.0, *report.NPS.Score)
}
