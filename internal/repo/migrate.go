package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Pathway/internal/repo/migrations"
)

const migrationTable = "schema_migrations"

// Migrate применяет встроенные миграции PostgreSQL, каждую не более одного раза.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return ApplyMigrations(ctx, pool, migrations.FS)
}

// ApplyMigrations применяет *.sql файлы из migrationFS в лексикографическом порядке.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, migrationFS fs.FS) error {
	files, err := MigrationFiles(migrationFS)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+migrationTable+` (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		var found int
		err = pool.QueryRow(ctx, `SELECT 1 FROM `+migrationTable+` WHERE name = $1`, file).Scan(&found)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", file, err)
		}

		upSQL := ExtractUpMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, upSQL); err != nil {
				return fmt.Errorf("exec migration %s: %w", file, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO `+migrationTable+` (name) VALUES ($1)`, file); err != nil {
				return fmt.Errorf("record migration %s: %w", file, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// MigrationFiles возвращает отсортированные имена *.sql файлов в корне migrationFS.
func MigrationFiles(migrationFS fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// ExtractUpMigration возвращает SQL из секции -- +migrate Up.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}
