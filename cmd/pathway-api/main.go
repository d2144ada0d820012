// Pathway API: HTTP-сервис для управления опросниками и прохождения анкет.
//
// API:
//   - Хранит опросники и их версии
//   - Ведёт сессии прохождения шаг за шагом
//   - Публикует события assessment.saved и session.completed в RabbitMQ
//
// Без RABBITMQ_URL события не публикуются.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Pathway/internal/api"
	"github.com/shaiso/Pathway/internal/config"
	"github.com/shaiso/Pathway/internal/mq"
	"github.com/shaiso/Pathway/internal/player"
	"github.com/shaiso/Pathway/internal/storage"
	"github.com/shaiso/Pathway/internal/telemetry"
)

var startTime = time.Now()

func main() {
	cfg, err := config.LoadAPI()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting pathway-api", "store", cfg.Store.Driver)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	var events mq.Events = mq.Nop{}
	if cfg.MQ.URL != "" {
		conn, err := connectMQ(ctx, cfg.MQ.URL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, events disabled", "error", err)
		} else {
			defer conn.Close()
			events = mq.NewPublisher(conn, logger)
		}
	}

	handler := api.NewHandler(api.Config{
		Assessments: stores.Assessments,
		Player: player.New(player.Config{
			Assessments: stores.Assessments,
			Sessions:    stores.Sessions,
			Notifier:    events,
			Logger:      logger,
		}),
		Events: events,
		Logger: logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

func connectMQ(ctx context.Context, url string, logger *slog.Logger) (*mq.Connection, error) {
	conn, err := mq.Dial(ctx, url, logger, 5)
	if err != nil {
		return nil, err
	}
	if err := mq.SetupTopology(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setup topology: %w", err)
	}
	logger.Info("RabbitMQ connected")
	return conn, nil
}
