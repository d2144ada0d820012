package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Session прохождение опросника одним респондентом.
//
// Ответы хранятся по шагам: ключ верхнего уровня это Step.AnswerKey(),
// внутри лежат значения полей. Для вычисления условий ответы
// сворачиваются в плоский набор через FlatAnswers.
type Session struct {
	// ID уникальный идентификатор сессии.
	ID uuid.UUID `json:"id"`

	// AssessmentID опросник, который проходится.
	AssessmentID uuid.UUID `json:"assessment_id"`

	// AssessmentVersion версия опросника на момент старта.
	AssessmentVersion int `json:"assessment_version"`

	// Status статус прохождения.
	Status SessionStatus `json:"status"`

	// CurrentStepID шаг, на котором находится респондент.
	// Пустой после завершения.
	CurrentStepID string `json:"current_step_id,omitempty"`

	// Answers ответы по шагам.
	Answers map[string]map[string]any `json:"answers"`

	// History пройденные шаги, от первого к предыдущему.
	History []string `json:"history,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewSession создаёт сессию, стоящую на стартовом шаге.
func NewSession(assessmentID uuid.UUID, version int, startStepID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:                uuid.New(),
		AssessmentID:      assessmentID,
		AssessmentVersion: version,
		Status:            SessionStatusInProgress,
		CurrentStepID:     startStepID,
		Answers:           make(map[string]map[string]any),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// IsFinished возвращает true, если сессия завершена или просрочена.
func (s *Session) IsFinished() bool {
	return s.Status.IsTerminal()
}

// StepAnswers возвращает ответы шага. Никогда не возвращает nil.
func (s *Session) StepAnswers(key string) map[string]any {
	if a, ok := s.Answers[key]; ok && a != nil {
		return a
	}
	return map[string]any{}
}

// SetStepAnswers заменяет ответы шага.
func (s *Session) SetStepAnswers(key string, answers map[string]any) {
	if s.Answers == nil {
		s.Answers = make(map[string]map[string]any)
	}
	s.Answers[key] = answers
	s.UpdatedAt = time.Now().UTC()
}

// FlatAnswers сворачивает ответы в плоский набор для вычисления условий.
//
// Шаги обходятся в естественном порядке анкеты; при совпадении имён
// полей остаётся значение из более раннего шага. Ответы под ключами,
// которых нет в анкете, добавляются последними в порядке сортировки ключей.
func (s *Session) FlatAnswers(q *Questionnaire) Answers {
	flat := make(Answers)
	seen := make(map[string]bool)

	merge := func(key string) {
		if seen[key] {
			return
		}
		seen[key] = true
		for name, v := range s.Answers[key] {
			if _, exists := flat[name]; !exists {
				flat[name] = v
			}
		}
	}

	for _, id := range q.StepIDs() {
		if step, ok := q.Step(id); ok {
			merge(step.AnswerKey())
		}
	}

	rest := make([]string, 0, len(s.Answers))
	for key := range s.Answers {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		merge(key)
	}
	return flat
}

// MoveTo переводит сессию на шаг, запоминая текущий в истории.
func (s *Session) MoveTo(stepID string) {
	if s.CurrentStepID != "" {
		s.History = append(s.History, s.CurrentStepID)
	}
	s.CurrentStepID = stepID
	s.UpdatedAt = time.Now().UTC()
}

// PopHistory снимает последний пройденный шаг из истории.
func (s *Session) PopHistory() (string, bool) {
	if len(s.History) == 0 {
		return "", false
	}
	last := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	return last, true
}

// MoveBack переводит сессию на шаг без записи в историю.
func (s *Session) MoveBack(stepID string) {
	s.CurrentStepID = stepID
	s.UpdatedAt = time.Now().UTC()
}

// MarkCompleted завершает сессию.
func (s *Session) MarkCompleted() {
	now := time.Now().UTC()
	if s.CurrentStepID != "" {
		s.History = append(s.History, s.CurrentStepID)
	}
	s.Status = SessionStatusCompleted
	s.CurrentStepID = ""
	s.CompletedAt = &now
	s.UpdatedAt = now
}

// MarkExpired закрывает брошенную сессию.
func (s *Session) MarkExpired() {
	now := time.Now().UTC()
	s.Status = SessionStatusExpired
	s.CompletedAt = &now
	s.UpdatedAt = now
}
