package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"byteneko/internal/model"
	"byteneko/internal/service"
)

// SurveyHandler handles survey and response endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// Create handles POST /v1/surveys
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var survey model.Survey
	if err := json.NewDecoder(r.Body).Decode(&survey); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if survey.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := h.surveySvc.Create(r.Context(), &survey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, survey)
}

// List handles GET /v1/surveys
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.surveySvc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, surveys)
}

// Get handles GET /v1/surveys/{surveyId}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	survey, err := h.surveySvc.Get(r.Context(), surveyID)
	if err != nil {
		if errors.Is(err, service.ErrSurveyNotFound) {
			writeError(w, http.StatusNotFound, "survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Update handles PUT /v1/surveys/{surveyId}
func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	var survey model.Survey
	if err := json.NewDecoder(r.Body).Decode(&survey); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	survey.ID = surveyID
	if err := h.surveySvc.Update(r.Context(), &survey); err != nil {
		if errors.Is(err, service.ErrSurveyNotFound) {
			writeError(w, http.StatusNotFound, "survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Delete handles DELETE /v1/surveys/{surveyId}
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	if err := h.surveySvc.Delete(r.Context(), surveyID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Questions handles GET /v1/surveys/{surveyId}/questions
func (h *SurveyHandler) Questions(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	questions, err := h.surveySvc.Questions(r.Context(), surveyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// SubmitResponse handles POST /v1/surveys/{surveyId}/responses
func (h *SurveyHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	var response model.SurveyResponse
	if err := json.NewDecoder(r.Body).Decode(&response); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	response.SurveyID = surveyID
	if len(response.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "at least one answer is required")
		return
	}
	if err := h.surveySvc.SubmitResponse(r.Context(), &response); err != nil {
		if errors.Is(err, service.ErrSurveyNotFound) {
			writeError(w, http.StatusNotFound, "survey not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": response.ID})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
