package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/Pathway/internal/domain"
	"github.com/shaiso/Pathway/internal/repo"
)

type assessmentStore struct {
	db *sql.DB
}

var _ repo.AssessmentStore = (*assessmentStore)(nil)

const assessmentSelect = `
SELECT a.id, a.title, a.version, a.status, a.created_by, a.created_at, a.updated_at, v.definition
FROM assessments a
JOIN assessment_versions v ON v.assessment_id = a.id AND v.version = a.version`

func (s *assessmentStore) Create(ctx context.Context, a *domain.Assessment) error {
	defJSON, err := json.Marshal(a.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO assessments (id, title, version, status, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID.String(),
			a.Title,
			a.Version,
			string(a.Status),
			a.CreatedBy,
			toMillis(a.CreatedAt),
			toMillis(a.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repo.ErrAlreadyExists
			}
			return fmt.Errorf("insert assessment: %w", err)
		}
		return upsertVersion(ctx, tx, a, defJSON)
	})
}

func (s *assessmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	row := s.db.QueryRowContext(ctx, assessmentSelect+` WHERE a.id = ?`, id.String())
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	return a, err
}

func (s *assessmentStore) GetVersion(ctx context.Context, id uuid.UUID, version int) (*domain.Questionnaire, error) {
	var defJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT definition FROM assessment_versions WHERE assessment_id = ? AND version = ?`,
		id.String(), version,
	).Scan(&defJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment version: %w", err)
	}

	var q domain.Questionnaire
	if err := json.Unmarshal([]byte(defJSON), &q); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return &q, nil
}

func (s *assessmentStore) List(ctx context.Context, filter repo.AssessmentFilter) ([]domain.Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		assessmentSelect+`
		 WHERE (? = '' OR a.status = ?)
		 ORDER BY a.updated_at DESC
		 LIMIT ? OFFSET ?`,
		string(filter.Status), string(filter.Status),
		repo.PageLimit(filter.Limit), filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []domain.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *assessmentStore) Update(ctx context.Context, a *domain.Assessment) error {
	defJSON, err := json.Marshal(a.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE assessments SET title = ?, version = ?, status = ?, updated_at = ? WHERE id = ?`,
			a.Title, a.Version, string(a.Status), toMillis(a.UpdatedAt), a.ID.String(),
		)
		if err != nil {
			return fmt.Errorf("update assessment: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return repo.ErrNotFound
		}
		return upsertVersion(ctx, tx, a, defJSON)
	})
}

func (s *assessmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *assessmentStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func upsertVersion(ctx context.Context, tx *sql.Tx, a *domain.Assessment, defJSON []byte) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO assessment_versions (assessment_id, version, definition, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (assessment_id, version) DO UPDATE SET definition = excluded.definition`,
		a.ID.String(), a.Version, string(defJSON), toMillis(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert assessment version: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*domain.Assessment, error) {
	var (
		a                    domain.Assessment
		id, status, defJSON  string
		createdAt, updatedAt int64
	)
	err := row.Scan(&id, &a.Title, &a.Version, &status, &a.CreatedBy, &createdAt, &updatedAt, &defJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan assessment: %w", err)
	}

	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse assessment id: %w", err)
	}
	a.Status = domain.AssessmentStatus(status)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	if err := json.Unmarshal([]byte(defJSON), &a.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return &a, nil
}
