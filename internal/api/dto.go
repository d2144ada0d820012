package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/engine"
	"github.com/shaiso/Pathway/internal/player"
)

// Assessment DTOs

// CreateAssessmentRequest запрос на создание опросника.
// Без Definition создаётся анкета с приветственным шагом.
type CreateAssessmentRequest struct {
	Title      string          `json:"title"`
	CreatedBy  string          `json:"created_by,omitempty"`
	Definition json.RawMessage `json:"definition,omitempty"`
}

// UpdateAssessmentRequest запрос на обновление опросника.
// Новое Definition увеличивает версию.
type UpdateAssessmentRequest struct {
	Title      *string         `json:"title,omitempty"`
	Definition json.RawMessage `json:"definition,omitempty"`
}

// AssessmentSummary элемент списка опросников.
type AssessmentSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Version   int       `json:"version"`
	Status    string    `json:"status"`
	Steps     int       `json:"steps"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssessmentResponse опросник с определением.
type AssessmentResponse struct {
	AssessmentSummary
	Definition domain.Questionnaire `json:"definition"`
}

// AssessmentSummaryFromDomain конвертирует domain.Assessment в AssessmentSummary.
func AssessmentSummaryFromDomain(a *domain.Assessment) AssessmentSummary {
	return AssessmentSummary{
		ID:        a.ID,
		Title:     a.Title,
		Version:   a.Version,
		Status:    string(a.Status),
		Steps:     a.Definition.Steps.Len(),
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AssessmentFromDomain конвертирует domain.Assessment в AssessmentResponse.
func AssessmentFromDomain(a *domain.Assessment) AssessmentResponse {
	return AssessmentResponse{
		AssessmentSummary: AssessmentSummaryFromDomain(a),
		Definition:        a.Definition,
	}
}

// LintResponse результат проверки анкеты.
type LintResponse struct {
	Valid       bool     `json:"valid"`
	Error       string   `json:"error,omitempty"`
	ErrorStepID string   `json:"error_step_id,omitempty"`
	Reachable   []string `json:"reachable"`
	Unreachable []string `json:"unreachable"`
	Dangling    []string `json:"dangling"`
}

// LintFromReport конвертирует engine.LintReport в LintResponse.
func LintFromReport(r engine.LintReport) LintResponse {
	resp := LintResponse{
		Valid:       r.OK(),
		Reachable:   nonNil(r.Reachability.ReachableIDs()),
		Unreachable: nonNil(r.Reachability.Unreachable),
		Dangling:    nonNil(r.Reachability.Dangling),
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
		var verr *engine.ValidationError
		if errors.As(r.Err, &verr) {
			resp.ErrorStepID = verr.StepID
		}
	}
	return resp
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// Session DTOs

// SaveAnswersRequest ответы на поля текущего шага.
type SaveAnswersRequest struct {
	Answers map[string]any `json:"answers"`
}

// SessionResponse сессия и текущий шаг.
type SessionResponse struct {
	ID                uuid.UUID                 `json:"id"`
	AssessmentID      uuid.UUID                 `json:"assessment_id"`
	AssessmentVersion int                       `json:"assessment_version"`
	Status            string                    `json:"status"`
	CurrentStepID     string                    `json:"current_step_id,omitempty"`
	GroupID           string                    `json:"group_id,omitempty"`
	GroupTitle        string                    `json:"group_title,omitempty"`
	Step              *domain.Step              `json:"step,omitempty"`
	VisibleFields     []string                  `json:"visible_fields"`
	Answers           map[string]map[string]any `json:"answers"`
	History           []string                  `json:"history"`
	Progress          player.Progress           `json:"progress"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
	CompletedAt       *time.Time                `json:"completed_at,omitempty"`
}

// SessionFromView конвертирует player.View в SessionResponse.
func SessionFromView(v *player.View) SessionResponse {
	s := v.Session
	resp := SessionResponse{
		ID:                s.ID,
		AssessmentID:      s.AssessmentID,
		AssessmentVersion: s.AssessmentVersion,
		Status:            string(s.Status),
		CurrentStepID:     s.CurrentStepID,
		Step:              v.Step,
		VisibleFields:     nonNil(v.VisibleFields),
		Answers:           s.Answers,
		History:           nonNil(s.History),
		Progress:          v.Progress,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		CompletedAt:       s.CompletedAt,
	}
	if v.Group != nil {
		resp.GroupID = v.Group.ID
		resp.GroupTitle = v.Group.Title
	}
	if resp.Answers == nil {
		resp.Answers = map[string]map[string]any{}
	}
	return resp
}
