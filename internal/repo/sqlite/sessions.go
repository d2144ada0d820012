package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/repo"
)

type sessionStore struct {
	db *sql.DB
}

var _ repo.SessionStore = (*sessionStore)(nil)

const sessionSelect = `
SELECT id, assessment_id, assessment_version, status, current_step_id,
       answers, history, created_at, updated_at, completed_at
FROM sessions`

func (s *sessionStore) Create(ctx context.Context, sess *domain.Session) error {
	answersJSON, historyJSON, err := marshalState(sess)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, assessment_id, assessment_version, status, current_step_id,
		                       answers, history, created_at, updated_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID.String(),
		sess.AssessmentID.String(),
		sess.AssessmentVersion,
		string(sess.Status),
		sess.CurrentStepID,
		answersJSON,
		historyJSON,
		toMillis(sess.CreatedAt),
		toMillis(sess.UpdatedAt),
		nullMillis(sess.CompletedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrAlreadyExists
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *sessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx, sessionSelect+` WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	return sess, err
}

func (s *sessionStore) List(ctx context.Context, filter repo.SessionFilter) ([]domain.Session, error) {
	assessmentID := ""
	if filter.AssessmentID != nil {
		assessmentID = filter.AssessmentID.String()
	}
	rows, err := s.db.QueryContext(ctx,
		sessionSelect+`
		 WHERE (? = '' OR assessment_id = ?)
		   AND (? = '' OR status = ?)
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		assessmentID, assessmentID,
		string(filter.Status), string(filter.Status),
		repo.PageLimit(filter.Limit), filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return collectSessions(rows)
}

func (s *sessionStore) Update(ctx context.Context, sess *domain.Session) error {
	answersJSON, historyJSON, err := marshalState(sess)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		 SET status = ?, current_step_id = ?, answers = ?, history = ?, updated_at = ?, completed_at = ?
		 WHERE id = ?`,
		string(sess.Status),
		sess.CurrentStepID,
		answersJSON,
		historyJSON,
		toMillis(sess.UpdatedAt),
		nullMillis(sess.CompletedAt),
		sess.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *sessionStore) ListStale(ctx context.Context, before time.Time, limit int) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		sessionSelect+`
		 WHERE status = ? AND updated_at < ?
		 ORDER BY updated_at ASC
		 LIMIT ?`,
		string(domain.SessionStatusInProgress), toMillis(before), repo.PageLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list stale sessions: %w", err)
	}
	return collectSessions(rows)
}

func (s *sessionStore) Expire(ctx context.Context, id uuid.UUID, before, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		 SET status = ?, updated_at = ?, completed_at = ?
		 WHERE id = ? AND status = ? AND updated_at < ?`,
		string(domain.SessionStatusExpired),
		toMillis(at),
		toMillis(at),
		id.String(),
		string(domain.SessionStatusInProgress),
		toMillis(before),
	)
	if err != nil {
		return false, fmt.Errorf("expire session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("expire session: %w", err)
	}
	return n > 0, nil
}

func marshalState(sess *domain.Session) (string, string, error) {
	answers := sess.Answers
	if answers == nil {
		answers = map[string]map[string]any{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return "", "", fmt.Errorf("marshal answers: %w", err)
	}
	history := sess.History
	if history == nil {
		history = []string{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return "", "", fmt.Errorf("marshal history: %w", err)
	}
	return string(answersJSON), string(historyJSON), nil
}

func collectSessions(rows *sql.Rows) ([]domain.Session, error) {
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		sess                     domain.Session
		id, assessmentID, status string
		answersJSON, historyJSON string
		createdAt, updatedAt     int64
		completedAt              sql.NullInt64
	)
	err := row.Scan(
		&id,
		&assessmentID,
		&sess.AssessmentVersion,
		&status,
		&sess.CurrentStepID,
		&answersJSON,
		&historyJSON,
		&createdAt,
		&updatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if sess.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	if sess.AssessmentID, err = uuid.Parse(assessmentID); err != nil {
		return nil, fmt.Errorf("parse assessment id: %w", err)
	}
	sess.Status = domain.SessionStatus(status)
	sess.CreatedAt = fromMillis(createdAt)
	sess.UpdatedAt = fromMillis(updatedAt)
	sess.CompletedAt = fromNullMillis(completedAt)

	sess.Answers = make(map[string]map[string]any)
	if err := json.Unmarshal([]byte(answersJSON), &sess.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &sess.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if len(sess.History) == 0 {
		sess.History = nil
	}
	return &sess, nil
}
