package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shaiso/Pathway/internal/domain"
)

// AssessmentStore хранилище опросников.
//
// Реализации: AssessmentRepo (PostgreSQL), sqlite.Store, memory.Store.
type AssessmentStore interface {
	// Create сохраняет опросник и его текущую версию определения.
	Create(ctx context.Context, a *domain.Assessment) error

	// GetByID возвращает опросник с определением текущей версии.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error)

	// GetVersion возвращает определение конкретной версии.
	GetVersion(ctx context.Context, id uuid.UUID, version int) (*domain.Questionnaire, error)

	// List возвращает опросники, новые первыми.
	List(ctx context.Context, filter AssessmentFilter) ([]domain.Assessment, error)

	// Update сохраняет изменения. Определение записывается под a.Version.
	Update(ctx context.Context, a *domain.Assessment) error

	// Delete удаляет опросник вместе с версиями и сессиями.
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionStore хранилище сессий прохождения.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	List(ctx context.Context, filter SessionFilter) ([]domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error

	// ListStale возвращает незавершённые сессии, не обновлявшиеся с before.
	ListStale(ctx context.Context, before time.Time, limit int) ([]domain.Session, error)

	// Expire переводит сессию в EXPIRED с моментом at, только если она
	// всё ещё IN_PROGRESS и не обновлялась с before. Возвращает false,
	// если сессия успела измениться или её нет.
	Expire(ctx context.Context, id uuid.UUID, before, at time.Time) (bool, error)
}

// AssessmentFilter параметры фильтрации опросников.
type AssessmentFilter struct {
	Status domain.AssessmentStatus
	Limit  int
	Offset int
}

// SessionFilter параметры фильтрации сессий.
type SessionFilter struct {
	AssessmentID *uuid.UUID
	Status       domain.SessionStatus
	Limit        int
	Offset       int
}

// DefaultLimit размер страницы, если Limit не задан.
const DefaultLimit = 50

// PageLimit возвращает limit или DefaultLimit для неположительных значений.
func PageLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullUUID возвращает nil для пустого UUID.
func nullUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}

// isUniqueViolation распознаёт нарушение уникальности PostgreSQL (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
