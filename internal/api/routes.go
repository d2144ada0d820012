package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Metrics(),
		Logging(h.logger),
	)

	// Assessments
	mux.Handle("GET /api/v1/assessments", chain(http.HandlerFunc(h.ListAssessments)))
	mux.Handle("POST /api/v1/assessments", chain(http.HandlerFunc(h.CreateAssessment)))
	mux.Handle("POST /api/v1/assessments/lint", chain(http.HandlerFunc(h.LintDefinition)))
	mux.Handle("GET /api/v1/assessments/{id}", chain(http.HandlerFunc(h.GetAssessment)))
	mux.Handle("PUT /api/v1/assessments/{id}", chain(http.HandlerFunc(h.UpdateAssessment)))
	mux.Handle("DELETE /api/v1/assessments/{id}", chain(http.HandlerFunc(h.DeleteAssessment)))
	mux.Handle("POST /api/v1/assessments/{id}/publish", chain(http.HandlerFunc(h.PublishAssessment)))
	mux.Handle("GET /api/v1/assessments/{id}/lint", chain(http.HandlerFunc(h.LintAssessment)))

	// Sessions
	mux.Handle("POST /api/v1/assessments/{id}/sessions", chain(http.HandlerFunc(h.StartSession)))
	mux.Handle("GET /api/v1/sessions/{id}", chain(http.HandlerFunc(h.GetSession)))
	mux.Handle("PUT /api/v1/sessions/{id}/answers", chain(http.HandlerFunc(h.SaveAnswers)))
	mux.Handle("POST /api/v1/sessions/{id}/next", chain(http.HandlerFunc(h.NextStep)))
	mux.Handle("POST /api/v1/sessions/{id}/back", chain(http.HandlerFunc(h.PreviousStep)))
}
