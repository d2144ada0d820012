// Package config описывает конфигурацию сервисов Pathway.
//
// Значения читаются из переменных окружения, умолчания заданы в тегах
// envDefault. Каждый бинарник загружает свою структуру через Load*.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// ErrInvalidConfig: значения окружения несовместимы.
var ErrInvalidConfig = errors.New("invalid config")

// Log настройки логирования.
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"INFO"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Store выбор и параметры хранилища.
type Store struct {
	Driver     string `env:"STORE_DRIVER" envDefault:"postgres"`
	DBURL      string `env:"DB_URL"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"pathway.db"`
	Migrate    bool   `env:"DB_MIGRATE" envDefault:"true"`
}

// Validate проверяет драйвер хранилища.
func (s Store) Validate() error {
	switch s.Driver {
	case DriverPostgres, DriverMemory:
		return nil
	case DriverSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for sqlite driver", ErrInvalidConfig)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalidConfig, s.Driver)
	}
}

// MQ параметры RabbitMQ. Пустой URL отключает публикацию событий.
type MQ struct {
	URL string `env:"RABBITMQ_URL"`
}

// API конфигурация pathway-api.
type API struct {
	Log   Log
	Store Store
	MQ    MQ

	Port            string        `env:"API_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"API_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Auditor конфигурация pathway-auditor.
type Auditor struct {
	Log   Log
	Store Store
	MQ    MQ

	MetricsPort  string        `env:"METRICS_PORT" envDefault:"9101"`
	Prefetch     int           `env:"AUDITOR_PREFETCH" envDefault:"4"`
	PollInterval time.Duration `env:"AUDITOR_POLL_INTERVAL" envDefault:"10m"`
}

// Scheduler конфигурация pathway-scheduler.
type Scheduler struct {
	Log   Log
	Store Store

	MetricsPort string        `env:"METRICS_PORT" envDefault:"9102"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"72h"`
	SweepCron   string        `env:"SWEEP_CRON" envDefault:"*/15 * * * *"`
	SweepBatch  int           `env:"SWEEP_BATCH" envDefault:"500"`
}

// Validate проверяет TTL и расписание очистки.
func (s Scheduler) Validate() error {
	if err := s.Store.Validate(); err != nil {
		return err
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("%w: SESSION_TTL must be positive", ErrInvalidConfig)
	}
	if _, err := cron.ParseStandard(s.SweepCron); err != nil {
		return fmt.Errorf("%w: SWEEP_CRON: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CLI конфигурация pathway-cli.
type CLI struct {
	APIURL  string        `env:"PATHWAY_API_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"PATHWAY_TIMEOUT" envDefault:"30s"`
}

// LoadAPI читает конфигурацию API.
func LoadAPI() (API, error) {
	var cfg API
	if err := ParseEnv(&cfg); err != nil {
		return API{}, err
	}
	if err := cfg.Store.Validate(); err != nil {
		return API{}, err
	}
	return cfg, nil
}

// LoadAuditor читает конфигурацию аудитора.
func LoadAuditor() (Auditor, error) {
	var cfg Auditor
	if err := ParseEnv(&cfg); err != nil {
		return Auditor{}, err
	}
	if err := cfg.Store.Validate(); err != nil {
		return Auditor{}, err
	}
	if cfg.MQ.URL == "" {
		return Auditor{}, fmt.Errorf("%w: RABBITMQ_URL is required for the auditor", ErrInvalidConfig)
	}
	return cfg, nil
}

// LoadScheduler читает конфигурацию планировщика.
func LoadScheduler() (Scheduler, error) {
	var cfg Scheduler
	if err := ParseEnv(&cfg); err != nil {
		return Scheduler{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Scheduler{}, err
	}
	return cfg, nil
}

// LoadCLI читает конфигурацию CLI.
func LoadCLI() (CLI, error) {
	var cfg CLI
	if err := ParseEnv(&cfg); err != nil {
		return CLI{}, err
	}
	return cfg, nil
}
