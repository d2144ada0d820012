// Pathway Auditor: проверяет опубликованные анкеты и собирает статистику сессий.
//
// Auditor:
//   - Получает assessment.saved из RabbitMQ и проверяет новую версию
//   - Получает session.completed и обновляет гистограммы длительности и длины пути
//   - Периодически перепроверяет все опубликованные опросники
//
// Результаты доступны через /metrics.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Pathway/internal/auditor"
	"github.com/shaiso/Pathway/internal/config"
	"github.com/shaiso/Pathway/internal/mq"
	"github.com/shaiso/Pathway/internal/storage"
	"github.com/shaiso/Pathway/internal/telemetry"
)

func main() {
	cfg, err := config.LoadAuditor()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting pathway-auditor")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	conn, err := mq.Dial(ctx, cfg.MQ.URL, logger, 10)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := mq.SetupTopology(ctx, conn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	a := auditor.New(auditor.Config{
		Assessments:  stores.Assessments,
		Conn:         conn,
		Prefetch:     cfg.Prefetch,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	if err := a.Start(ctx); err != nil {
		logger.Error("failed to start auditor", "error", err)
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

	<-ctx.Done()

	a.Stop()
	logger.Info("pathway-auditor stopped")
}
