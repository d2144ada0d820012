// Pathway Scheduler: по расписанию переводит заброшенные сессии в EXPIRED.
//
// С Postgres несколько экземпляров могут работать одновременно:
// очистку выполняет только держатель advisory lock.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Pathway/internal/config"
	"github.com/shaiso/Pathway/internal/player"
	"github.com/shaiso/Pathway/internal/scheduler"
	"github.com/shaiso/Pathway/internal/storage"
	"github.com/shaiso/Pathway/internal/telemetry"
)

func main() {
	cfg, err := config.LoadScheduler()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting pathway-scheduler", "cron", cfg.SweepCron, "session_ttl", cfg.SessionTTL)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	var leader scheduler.Leader = scheduler.Solo{}
	if stores.Pool != nil {
		leader = scheduler.NewAdvisoryLock(stores.Pool)
	}

	sched, err := scheduler.New(scheduler.Config{
		Sweeper: player.New(player.Config{
			Assessments: stores.Assessments,
			Sessions:    stores.Sessions,
			Logger:      logger,
		}),
		Leader:     leader,
		CronExpr:   cfg.SweepCron,
		SessionTTL: cfg.SessionTTL,
		BatchSize:  cfg.SweepBatch,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.MetricsPort
	go func() {
		logger.Info("listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("pathway-scheduler stopped")
}
