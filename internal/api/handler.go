package api

import (
	"log/slog"

	"github.com/shaiso/Pathway/internal/mq"
	"github.com/shaiso/Pathway/internal/player"
	"github.com/shaiso/Pathway/internal/repo"
)

// Handler главный обработчик API с зависимостями.
type Handler struct {
	assessments repo.AssessmentStore
	player      *player.Player
	events      mq.Events
	logger      *slog.Logger
}

// Config конфигурация для создания Handler.
type Config struct {
	Assessments repo.AssessmentStore
	Player      *player.Player

	// Events по умолчанию mq.Nop.
	Events mq.Events

	Logger *slog.Logger
}

// NewHandler создаёт Handler.
func NewHandler(cfg Config) *Handler {
	events := cfg.Events
	if events == nil {
		events = mq.Nop{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		assessments: cfg.Assessments,
		player:      cfg.Player,
		events:      events,
		logger:      logger,
	}
}
