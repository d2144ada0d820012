package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики сервисов. Регистрируются в реестре по умолчанию и
// отдаются через promhttp.Handler() на /metrics.
var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathway_http_requests_total",
		Help: "Total HTTP requests handled by pathway-api",
	}, []string{"method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pathway_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathway_sessions_started_total",
		Help: "Sessions started",
	})

	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathway_sessions_completed_total",
		Help: "Sessions that reached an end destination",
	})

	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathway_sessions_expired_total",
		Help: "Sessions closed by the stale session sweep",
	})

	// StepTransitions переходы между шагами по виду цели
	// (step, group, end, back, incomplete, broken).
	StepTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathway_step_transitions_total",
		Help: "Step transitions by outcome",
	}, []string{"outcome"})

	// DefinitionsLinted результаты проверки определений (ok, invalid, unreachable).
	DefinitionsLinted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathway_definitions_linted_total",
		Help: "Assessment definitions linted by result",
	}, []string{"result"})

	UnreachableSteps = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pathway_unreachable_steps",
		Help: "Unreachable steps in the latest saved version of an assessment",
	}, []string{"assessment_id"})

	SessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathway_session_duration_seconds",
		Help:    "Time from session start to completion",
		Buckets: []float64{30, 60, 120, 300, 600, 1800, 3600, 86400},
	})

	SessionPathLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathway_session_path_steps",
		Help:    "Steps visited by completed sessions",
		Buckets: prometheus.LinearBuckets(1, 2, 10),
	})

	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathway_sweep_runs_total",
		Help: "Stale session sweeps by result",
	}, []string{"result"})
)
