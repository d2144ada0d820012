package auditor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Pathway/internal/mq"
	"github.com/shaiso/Pathway/internal/repo"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Minute
	defaultPrefetch     = 4
	pollPageSize        = 100
)

// Auditor проверяет сохранённые опросники и собирает статистику сессий.
type Auditor struct {
	assessments repo.AssessmentStore
	conn        *mq.Connection

	prefetch     int
	pollInterval time.Duration

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config конфигурация Auditor.
type Config struct {
	Assessments repo.AssessmentStore

	// Conn соединение с брокером. Без него работает только обход.
	Conn *mq.Connection

	Prefetch     int
	PollInterval time.Duration

	Logger *slog.Logger
}

// New создаёт Auditor.
func New(cfg Config) *Auditor {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Auditor{
		assessments:  cfg.Assessments,
		conn:         cfg.Conn,
		prefetch:     prefetch,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start запускает потребителей очередей и периодический обход.
func (a *Auditor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancelFunc = cancel

	a.logger.Info("starting auditor",
		"prefetch", a.prefetch,
		"poll_interval", a.pollInterval,
	)

	if a.conn != nil {
		a.consume(ctx, mq.QueueAssessmentAudit, a.handleAssessmentSaved)
		a.consume(ctx, mq.QueueSessionsCompleted, a.handleSessionCompleted)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.pollLoop(ctx)
	}()

	a.logger.Info("auditor started")
	return nil
}

func (a *Auditor) consume(ctx context.Context, queue mq.Queue, handler mq.Handler) {
	consumer := mq.NewConsumer(a.conn, a.logger, mq.ConsumerConfig{
		Queue:    queue,
		Handler:  handler,
		Prefetch: a.prefetch,
	})

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("consumer stopped", "queue", queue, "error", err)
		}
	}()
}

// Stop останавливает Auditor и ждёт завершения горутин.
func (a *Auditor) Stop() {
	a.logger.Info("stopping auditor...")

	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.wg.Wait()

	a.logger.Info("auditor stopped")
}

func (a *Auditor) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	a.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.poll(ctx)
		}
	}
}

func (a *Auditor) poll(ctx context.Context) {
	n, err := a.AuditPublished(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Error("audit sweep failed", "error", err)
		}
		return
	}
	a.logger.Debug("audit sweep finished", "assessments", n)
}
