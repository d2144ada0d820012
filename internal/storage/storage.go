// Package storage открывает хранилище, выбранное в конфигурации.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Pathway/internal/config"
	"github.com/shaiso/Pathway/internal/repo"
	"github.com/shaiso/Pathway/internal/repo/memory"
	"github.com/shaiso/Pathway/internal/repo/sqlite"
)

// Stores открытые хранилища опросников и сессий.
type Stores struct {
	Assessments repo.AssessmentStore
	Sessions    repo.SessionStore

	// Pool пул PostgreSQL; nil для других драйверов.
	Pool *pgxpool.Pool

	Driver string

	close func() error
}

// Open подключается к хранилищу по cfg.Driver.
func Open(ctx context.Context, cfg config.Store, logger *slog.Logger) (*Stores, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := repo.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Migrate {
			if err := repo.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		logger.Info("connected to database", "driver", cfg.Driver)
		return &Stores{
			Assessments: repo.NewAssessmentRepo(pool),
			Sessions:    repo.NewSessionRepo(pool),
			Pool:        pool,
			Driver:      cfg.Driver,
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("opened database", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return &Stores{
			Assessments: store.Assessments(),
			Sessions:    store.Sessions(),
			Driver:      cfg.Driver,
			close:       store.Close,
		}, nil

	default:
		store := memory.New()
		logger.Warn("using in-memory store, data is lost on restart")
		return &Stores{
			Assessments: store.Assessments(),
			Sessions:    store.Sessions(),
			Driver:      config.DriverMemory,
			close:       store.Close,
		}, nil
	}
}

// Close освобождает соединения.
func (s *Stores) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}
