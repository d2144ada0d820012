package api

import (
	"encoding/json"
	"net/http"
)

// StartSession начинает прохождение опубликованного опросника.
// POST /api/v1/assessments/{id}/sessions
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid assessment id")
	if !ok {
		return
	}

	view, err := h.player.Start(r.Context(), id)
	if handlePlayerError(w, h.logger, err, "assessment not found") {
		return
	}

	Created(w, SessionFromView(view))
}

// GetSession возвращает сессию и видимые поля текущего шага.
// GET /api/v1/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid session id")
	if !ok {
		return
	}

	view, err := h.player.Get(r.Context(), id)
	if handlePlayerError(w, h.logger, err, "session not found") {
		return
	}

	Success(w, SessionFromView(view))
}

// SaveAnswers сохраняет ответы текущего шага.
// PUT /api/v1/sessions/{id}/answers
func (h *Handler) SaveAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid session id")
	if !ok {
		return
	}

	var req SaveAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Answers == nil {
		BadRequest(w, "answers are required")
		return
	}

	view, err := h.player.SaveAnswers(r.Context(), id, req.Answers)
	if handlePlayerError(w, h.logger, err, "session not found") {
		return
	}

	Success(w, SessionFromView(view))
}

// NextStep переходит к следующему шагу или завершает сессию.
// POST /api/v1/sessions/{id}/next
func (h *Handler) NextStep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid session id")
	if !ok {
		return
	}

	view, err := h.player.Advance(r.Context(), id)
	if handlePlayerError(w, h.logger, err, "session not found") {
		return
	}

	Success(w, SessionFromView(view))
}

// PreviousStep возвращает на предыдущий шаг.
// POST /api/v1/sessions/{id}/back
func (h *Handler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid session id")
	if !ok {
		return
	}

	view, err := h.player.Back(r.Context(), id)
	if handlePlayerError(w, h.logger, err, "session not found") {
		return
	}

	Success(w, SessionFromView(view))
}
