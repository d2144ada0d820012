package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Pathway/internal/domain"
)

// SessionRepo репозиторий сессий прохождения в PostgreSQL.
type SessionRepo struct {
	pool *pgxpool.Pool
}

// NewSessionRepo создаёт новый SessionRepo.
func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

var _ SessionStore = (*SessionRepo)(nil)

const sessionColumns = `
	id, assessment_id, assessment_version, status, current_step_id,
	answers, history, created_at, updated_at, completed_at
`

// Create создаёт новую сессию.
func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	answersJSON, historyJSON, err := marshalSessionState(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (id, assessment_id, assessment_version, status, current_step_id,
		                      answers, history, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.pool.Exec(ctx, query,
		s.ID,
		s.AssessmentID,
		s.AssessmentVersion,
		s.Status,
		nullString(s.CurrentStepID),
		answersJSON,
		historyJSON,
		s.CreatedAt,
		s.UpdatedAt,
		s.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID возвращает сессию по ID.
func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	s, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// List возвращает сессии с фильтрацией по опроснику и статусу.
func (r *SessionRepo) List(ctx context.Context, filter SessionFilter) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE ($1::uuid IS NULL OR assessment_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullUUID(filter.AssessmentID),
		nullString(string(filter.Status)),
		PageLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return collectSessions(rows)
}

// Update сохраняет состояние сессии.
func (r *SessionRepo) Update(ctx context.Context, s *domain.Session) error {
	answersJSON, historyJSON, err := marshalSessionState(s)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessions
		SET status = $2, current_step_id = $3, answers = $4, history = $5,
		    updated_at = $6, completed_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Status,
		nullString(s.CurrentStepID),
		answersJSON,
		historyJSON,
		s.UpdatedAt,
		s.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStale возвращает сессии IN_PROGRESS, не обновлявшиеся с before.
func (r *SessionRepo) ListStale(ctx context.Context, before time.Time, limit int) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE status = 'IN_PROGRESS' AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, before, PageLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list stale sessions: %w", err)
	}
	return collectSessions(rows)
}

// --- Helpers ---

func marshalSessionState(s *domain.Session) ([]byte, []byte, error) {
	answers := s.Answers
	if answers == nil {
		answers = map[string]map[string]any{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal answers: %w", err)
	}

	history := s.History
	if history == nil {
		history = []string{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal history: %w", err)
	}
	return answersJSON, historyJSON, nil
}

func collectSessions(rows pgx.Rows) ([]domain.Session, error) {
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// scanSession сканирует одну строку в Session.
func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	var currentStep *string
	var answersJSON, historyJSON []byte

	err := row.Scan(
		&s.ID,
		&s.AssessmentID,
		&s.AssessmentVersion,
		&s.Status,
		&currentStep,
		&answersJSON,
		&historyJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if currentStep != nil {
		s.CurrentStepID = *currentStep
	}
	if err := unmarshalSessionState(&s, answersJSON, historyJSON); err != nil {
		return nil, err
	}
	return &s, nil
}

// unmarshalSessionState восстанавливает ответы и историю из JSON-колонок.
func unmarshalSessionState(s *domain.Session, answersJSON, historyJSON []byte) error {
	s.Answers = make(map[string]map[string]any)
	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &s.Answers); err != nil {
			return fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &s.History); err != nil {
			return fmt.Errorf("unmarshal history: %w", err)
		}
	}
	return nil
}

// Expire закрывает сессию, если она не менялась после чтения из ListStale.
func (r *SessionRepo) Expire(ctx context.Context, id uuid.UUID, before, at time.Time) (bool, error) {
	query := `
		UPDATE sessions
		SET status = $2, updated_at = $4, completed_at = $4
		WHERE id = $1 AND status = $3 AND updated_at < $5
	`
	result, err := r.pool.Exec(ctx, query,
		id,
		domain.SessionStatusExpired,
		domain.SessionStatusInProgress,
		at,
		before,
	)
	if err != nil {
		return false, fmt.Errorf("expire session: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
