package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/engine"
	"github.com/shaiso/Pathway/internal/repo"
)

// ListAssessments возвращает список опросников.
// GET /api/v1/assessments?status=published&limit=50&offset=0
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter repo.AssessmentFilter
	if status := q.Get("status"); status != "" {
		filter.Status = domain.AssessmentStatus(status)
		if !filter.Status.IsValid() {
			BadRequest(w, "invalid status")
			return
		}
	}

	var ok bool
	if filter.Limit, ok = queryInt(w, q.Get("limit"), "limit"); !ok {
		return
	}
	if filter.Offset, ok = queryInt(w, q.Get("offset"), "offset"); !ok {
		return
	}

	assessments, err := h.assessments.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]AssessmentSummary, len(assessments))
	for i := range assessments {
		result[i] = AssessmentSummaryFromDomain(&assessments[i])
	}

	List(w, result, len(result))
}

// CreateAssessment создаёт опросник в статусе draft.
// POST /api/v1/assessments
func (h *Handler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Title == "" {
		BadRequest(w, "title is required")
		return
	}

	a := domain.NewAssessment(req.Title, req.CreatedBy)
	if len(req.Definition) > 0 {
		def, ok := parseDefinition(w, req.Definition)
		if !ok {
			return
		}
		a.Definition = *def
	}

	if err := h.assessments.Create(r.Context(), a); HandleRepoError(w, h.logger, err, "") {
		return
	}

	h.announce(r.Context(), a)
	Created(w, AssessmentFromDomain(a))
}

// GetAssessment возвращает опросник по ID.
// GET /api/v1/assessments/{id}
func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid assessment id")
	if !ok {
		return
	}

	a, err := h.assessments.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "assessment not found") {
		return
	}

	Success(w, AssessmentFromDomain(a))
}

// UpdateAssessment обновляет название и/или определение.
// PUT /api/v1/assessments/{id}
func (h *Handler) UpdateAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid assessment id")
	if !ok {
		return
	}

	var req UpdateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	a, err := h.assessments.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "assessment not found") {
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			BadRequest(w, "title must not be empty")
			return
		}
		a.Title = *req.Title
	}
	if len(req.Definition) > 0 {
		def, ok := parseDefinition(w, req.Definition)
		if !ok {
			return
		}
		a.Revise(*def)
	}

	if err := h.assessments.Update(r.Context(), a); HandleRepoError(w, h.logger, err, "assessment not found") {
		return
	}

	h.announce(r.Context(), a)
	Success(w, AssessmentFromDomain(a))
}

// DeleteAssessment удаляет опросник вместе с версиями и сессиями.
// DELETE /api/v1/assessments/{id}
func (h *Handler) DeleteAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid assessment id")
	if !ok {
		return
	}

	if err := h.assessments.Delete(r.Context(), id); HandleRepoError(w, h.logger, err, "assessment not found") {
		return
	}

	NoContent(w)
}

// PublishAssessment открывает опросник для прохождения.
// POST /api/v1/assessments/{id}/publish
func (h *Handler) PublishAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid assessment id")
	if !ok {
		return
	}

	a, err := h.assessments.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "assessment not found") {
		return
	}

	if HandleDefinitionError(w, engine.Validate(&a.Definition)) {
		return
	}

	if !a.IsPublished() {
		a.Publish()
		if err := h.assessments.Update(r.Context(), a); HandleRepoError(w, h.logger, err, "assessment not found") {
			return
		}
		h.announce(r.Context(), a)
	}

	Success(w, AssessmentFromDomain(a))
}

// LintAssessment проверяет сохранённый опросник.
// GET /api/v1/assessments/{id}/lint
func (h *Handler) LintAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid assessment id")
	if !ok {
		return
	}

	a, err := h.assessments.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "assessment not found") {
		return
	}

	Success(w, LintFromReport(engine.Lint(&a.Definition)))
}

// LintDefinition проверяет несохранённую анкету из тела запроса.
// POST /api/v1/assessments/lint
func (h *Handler) LintDefinition(w http.ResponseWriter, r *http.Request) {
	var q domain.Questionnaire
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		BadRequest(w, "invalid questionnaire definition")
		return
	}

	Success(w, LintFromReport(engine.Lint(&q)))
}

// --- Helpers ---

// announce публикует assessment.saved. Ошибка брокера не ломает запрос.
func (h *Handler) announce(ctx context.Context, a *domain.Assessment) {
	if err := h.events.AssessmentSaved(ctx, a); err != nil {
		h.logger.Warn("failed to publish assessment.saved",
			"assessment_id", a.ID,
			"version", a.Version,
			"error", err,
		)
	}
}

func parseDefinition(w http.ResponseWriter, raw json.RawMessage) (*domain.Questionnaire, bool) {
	def, err := engine.Parse(raw)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidDefinition) {
			BadRequest(w, err.Error())
			return nil, false
		}
		HandleDefinitionError(w, err)
		return nil, false
	}
	return def, true
}

func pathID(w http.ResponseWriter, r *http.Request, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, message)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(w http.ResponseWriter, value, name string) (int, bool) {
	if value == "" {
		return 0, true
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		BadRequest(w, "invalid "+name)
		return 0, false
	}
	return n, true
}
