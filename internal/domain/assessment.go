package domain

import (
	"time"

	"github.com/google/uuid"
)

// Assessment хранимый опросник.
//
// Definition содержит саму анкету; остальные поля служат для
// каталогизации, публикации и версионирования.
type Assessment struct {
	// ID уникальный идентификатор опросника.
	ID uuid.UUID `json:"id"`

	// Title отображаемое название.
	Title string `json:"title"`

	// Version увеличивается при каждом сохранении определения.
	// Сессия запоминает версию, с которой стартовала.
	Version int `json:"version"`

	// Status статус публикации.
	Status AssessmentStatus `json:"status"`

	// Definition группы и шаги анкеты.
	Definition Questionnaire `json:"definition"`

	// CreatedBy автор, если известен.
	CreatedBy string `json:"created_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAssessment создаёт черновик с шаблонной анкетой.
func NewAssessment(title, createdBy string) *Assessment {
	now := time.Now().UTC()
	return &Assessment{
		ID:         uuid.New(),
		Title:      title,
		Version:    1,
		Status:     AssessmentStatusDraft,
		Definition: NewQuestionnaire(),
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsPublished возвращает true, если по опроснику можно стартовать сессии.
func (a *Assessment) IsPublished() bool {
	return a.Status == AssessmentStatusPublished
}

// Revise заменяет определение и увеличивает версию.
func (a *Assessment) Revise(def Questionnaire) {
	a.Definition = def
	a.Version++
	a.UpdatedAt = time.Now().UTC()
}

// Publish переводит опросник в статус published.
func (a *Assessment) Publish() {
	a.Status = AssessmentStatusPublished
	a.UpdatedAt = time.Now().UTC()
}

// Unpublish возвращает опросник в черновики.
func (a *Assessment) Unpublish() {
	a.Status = AssessmentStatusDraft
	a.UpdatedAt = time.Now().UTC()
}
