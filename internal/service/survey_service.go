package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"byteneko/internal/cache"
	"byteneko/internal/model"
	"byteneko/internal/repository"
)

var ErrSurveyNotFound = errors.New("service: survey not found")

// SurveyService handles survey and response lifecycle. Any write that
// changes the response set also drops the survey's cached reports so
// the next analysis recomputes.
type SurveyService struct {
	surveys   repository.SurveyRepo
	questions repository.QuestionRepo
	responses repository.ResponseStore
	cache     cache.ReportCache
	log       *zap.Logger
}

func NewSurveyService(
	surveys repository.SurveyRepo,
	questions repository.QuestionRepo,
	responses repository.ResponseStore,
	reportCache cache.ReportCache,
	log *zap.Logger,
) *SurveyService {
	return &SurveyService{
		surveys:   surveys,
		questions: questions,
		responses: responses,
		cache:     reportCache,
		log:       log,
	}
}

func (s *SurveyService) Create(ctx context.Context, survey *model.Survey) error {
	return s.surveys.Create(ctx, survey)
}

func (s *SurveyService) Get(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	return survey, nil
}

func (s *SurveyService) List(ctx context.Context) ([]*model.Survey, error) {
	return s.surveys.GetAll(ctx)
}

func (s *SurveyService) Update(ctx context.Context, survey *model.Survey) error {
	existing, err := s.surveys.GetByID(ctx, survey.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSurveyNotFound
	}
	if err := s.surveys.Update(ctx, survey); err != nil {
		return err
	}
	s.invalidate(ctx, survey.ID)
	return nil
}

func (s *SurveyService) Delete(ctx context.Context, id string) error {
	if err := s.surveys.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *SurveyService) Questions(ctx context.Context, surveyID string) ([]*model.Question, error) {
	questions, err := s.questions.GetBySurveyID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	// Classification rides on the read path so clients can preview
	// which questions the analysis will redact.
	for _, q := range questions {
		q.Sensitivity, q.SensitivityReason = Classify(q)
	}
	return questions, nil
}

// SubmitResponse validates the answers against the survey's questions
// and stores the response.
func (s *SurveyService) SubmitResponse(ctx context.Context, response *model.SurveyResponse) error {
	survey, err := s.surveys.GetByID(ctx, response.SurveyID)
	if err != nil {
		return err
	}
	if survey == nil {
		return ErrSurveyNotFound
	}
	questions, err := s.questions.GetBySurveyID(ctx, response.SurveyID)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	for _, a := range response.Answers {
		if _, ok := known[a.QuestionID]; !ok {
			return fmt.Errorf("service: answer references unknown question %s", a.QuestionID)
		}
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return err
	}
	s.invalidate(ctx, response.SurveyID)
	return nil
}

func (s *SurveyService) invalidate(ctx context.Context, surveyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSurvey(ctx, surveyID); err != nil {
		s.log.Warn("report cache invalidation failed",
			zap.String("surveyId", surveyID), zap.Error(err))
	}
}
