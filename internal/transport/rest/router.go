package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"byteneko/internal/service"
	"byteneko/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	SurveyService   *service.SurveyService
	AnalysisService *service.AnalysisService
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	reportHandler := handler.NewReportHandler(c.AnalysisService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/surveys", surveyHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}", surveyHandler.Update).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}", surveyHandler.Delete).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}/questions", surveyHandler.Questions).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}/responses", surveyHandler.SubmitResponse).Methods("POST", "OPTIONS")

	v1.HandleFunc("/surveys/{surveyId}/analysis", reportHandler.GetAnalysis).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
