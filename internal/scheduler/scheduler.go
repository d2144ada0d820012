package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Pathway/internal/telemetry"
)

// Default configuration values.
const (
	defaultBatchSize  = 500
	defaultSessionTTL = 72 * time.Hour
	defaultCronExpr   = "*/15 * * * *"

	// maxBatchesPerTick предел пачек за один тик.
	maxBatchesPerTick = 20
)

// Sweeper закрывает просроченные сессии. Реализуется player.Player.
type Sweeper interface {
	ExpireStale(ctx context.Context, ttl time.Duration, limit int) (int, error)
}

// Scheduler по расписанию закрывает сессии, брошенные респондентами.
type Scheduler struct {
	sweeper   Sweeper
	leader    Leader
	schedule  cron.Schedule
	ttl       time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

// Config конфигурация Scheduler.
type Config struct {
	Sweeper Sweeper

	// Leader по умолчанию Solo.
	Leader Leader

	CronExpr   string
	SessionTTL time.Duration
	BatchSize  int

	Logger *slog.Logger
}

// New создаёт Scheduler. Ошибка только при невалидном CronExpr.
func New(cfg Config) (*Scheduler, error) {
	expr := cfg.CronExpr
	if expr == "" {
		expr = defaultCronExpr
	}
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var leader Leader = Solo{}
	if cfg.Leader != nil {
		leader = cfg.Leader
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		sweeper:   cfg.Sweeper,
		leader:    leader,
		schedule:  schedule,
		ttl:       ttl,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Run выполняет Tick по расписанию до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.leader.Release(context.Background())

	s.logger.Info("scheduler started", "session_ttl", s.ttl, "batch_size", s.batchSize)

	for {
		next := NextDue(s.schedule, s.now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("sweep failed", "error", err)
		}
	}
}

// Tick выполняет одну очистку, если экземпляр лидер.
//
// Сессии закрываются пачками по BatchSize, пока пачка заполнена.
// Возвращает количество закрытых сессий.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	lead, err := s.leader.TryLead(ctx)
	if err != nil {
		telemetry.SweepRuns.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("leader election: %w", err)
	}
	if !lead {
		telemetry.SweepRuns.WithLabelValues("follower").Inc()
		s.logger.Debug("not a leader, skipping sweep")
		return 0, nil
	}

	total := 0
	for range maxBatchesPerTick {
		n, err := s.sweeper.ExpireStale(ctx, s.ttl, s.batchSize)
		total += n
		if err != nil {
			telemetry.SweepRuns.WithLabelValues("error").Inc()
			return total, err
		}
		if n < s.batchSize {
			break
		}
	}

	telemetry.SweepRuns.WithLabelValues("ok").Inc()
	s.logger.Info("sweep completed", "expired", total)
	return total, nil
}
