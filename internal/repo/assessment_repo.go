package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Pathway/internal/domain"
)

// AssessmentRepo репозиторий опросников и их версий в PostgreSQL.
type AssessmentRepo struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepo создаёт новый AssessmentRepo.
func NewAssessmentRepo(pool *pgxpool.Pool) *AssessmentRepo {
	return &AssessmentRepo{pool: pool}
}

var _ AssessmentStore = (*AssessmentRepo)(nil)

const assessmentColumns = `
	a.id, a.title, a.version, a.status, a.created_by, a.created_at, a.updated_at, v.definition
`

// Create создаёт опросник и первую версию определения.
func (r *AssessmentRepo) Create(ctx context.Context, a *domain.Assessment) error {
	defJSON, err := json.Marshal(a.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO assessments (id, title, version, status, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			a.ID,
			a.Title,
			a.Version,
			a.Status,
			nullString(a.CreatedBy),
			a.CreatedAt,
			a.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("insert assessment: %w", err)
		}

		if err := upsertVersion(ctx, tx, a.ID, a.Version, defJSON); err != nil {
			return err
		}
		return nil
	})
}

// GetByID возвращает опросник с определением текущей версии.
func (r *AssessmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	query := `
		SELECT ` + assessmentColumns + `
		FROM assessments a
		JOIN assessment_versions v ON v.assessment_id = a.id AND v.version = a.version
		WHERE a.id = $1
	`
	a, err := scanAssessment(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// GetVersion возвращает определение конкретной версии.
func (r *AssessmentRepo) GetVersion(ctx context.Context, id uuid.UUID, version int) (*domain.Questionnaire, error) {
	var defJSON []byte
	err := r.pool.QueryRow(ctx, `
		SELECT definition
		FROM assessment_versions
		WHERE assessment_id = $1 AND version = $2
	`, id, version).Scan(&defJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment version: %w", err)
	}

	var q domain.Questionnaire
	if err := json.Unmarshal(defJSON, &q); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return &q, nil
}

// List возвращает опросники с фильтрацией по статусу.
func (r *AssessmentRepo) List(ctx context.Context, filter AssessmentFilter) ([]domain.Assessment, error) {
	query := `
		SELECT ` + assessmentColumns + `
		FROM assessments a
		JOIN assessment_versions v ON v.assessment_id = a.id AND v.version = a.version
		WHERE ($1::text IS NULL OR a.status = $1)
		ORDER BY a.updated_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Status)),
		PageLimit(filter.Limit),
		filter.Offset,
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

// Update обновляет опросник и записывает определение под текущей версией.
func (r *AssessmentRepo) Update(ctx context.Context, a *domain.Assessment) error {
	defJSON, err := json.Marshal(a.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE assessments
			SET title = $2, version = $3, status = $4, updated_at = $5
			WHERE id = $1
		`, a.ID, a.Title, a.Version, a.Status, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update assessment: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}
		return upsertVersion(ctx, tx, a.ID, a.Version, defJSON)
	})
}

// Delete удаляет опросник (каскадно удалит версии и сессии).
func (r *AssessmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func upsertVersion(ctx context.Context, tx pgx.Tx, id uuid.UUID, version int, defJSON []byte) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO assessment_versions (assessment_id, version, definition, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (assessment_id, version) DO UPDATE SET definition = EXCLUDED.definition
	`, id, version, string(defJSON))
	if err != nil {
		return fmt.Errorf("upsert assessment version: %w", err)
	}
	return nil
}

// scanAssessment сканирует строку в Assessment. Работает и для pgx.Row, и для pgx.Rows.
func scanAssessment(row pgx.Row) (*domain.Assessment, error) {
	var a domain.Assessment
	var createdBy *string
	var defJSON []byte

	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Version,
		&a.Status,
		&createdBy,
		&a.CreatedAt,
		&a.UpdatedAt,
		&defJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan assessment: %w", err)
	}

	if createdBy != nil {
		a.CreatedBy = *createdBy
	}
	if err := json.Unmarshal(defJSON, &a.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return &a, nil
}
