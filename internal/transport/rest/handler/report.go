package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"byteneko/internal/model"
	"byteneko/internal/service"
)

// ReportHandler handles analysis endpoints
type ReportHandler struct {
	analysisSvc *service.AnalysisService
}

// NewReportHandler creates a new report handler
func NewReportHandler(analysisSvc *service.AnalysisService) *ReportHandler {
	return &ReportHandler{analysisSvc: analysisSvc}
}

// GetAnalysis handles GET /v1/surveys/{surveyId}/analysis
//
// Query parameters:
//
//	start, end        RFC 3339 submission window bounds
//	segmentQuestion   question id to segment by
//	segmentValue      answer the segment must match (case-insensitive)
//	charts=true       attach rendered chart payloads
//	refresh=true      skip the report cache
func (h *ReportHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	q := r.URL.Query()

	filter := &model.ResponseFilter{SurveyID: surveyID}
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be RFC 3339")
			return
		}
		filter.Start = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be RFC 3339")
			return
		}
		filter.End = &t
	}
	filter.SegmentQuestionID = q.Get("segmentQuestion")
	filter.SegmentValue = q.Get("segmentValue")

	opts := service.AnalysisOptions{
		IncludeCharts: q.Get("charts") == "true",
		BypassCache:   q.Get("refresh") == "true",
	}

	report, err := h.analysisSvc.Generate(r.Context(), surveyID, filter, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}
