package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel переводит строку уровня в slog.Level.
// Возможные значения: DEBUG, INFO, WARN, ERROR (регистр не важен).
// По умолчанию: INFO
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger инициализирует глобальный логгер.
//
// Формат вывода:
//   - "json" (по умолчанию) для production
//   - "text" человекочитаемый формат для разработки
func SetupLogger(level, format string) *slog.Logger {
	logger := NewLogger(os.Stdout, level, format)
	slog.SetDefault(logger)
	return logger
}

// NewLogger создаёт логгер, пишущий в w. Глобальный логгер не меняется.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Ключи контекста для передачи данных в логгер.
type ctxKey string

const (
	// CtxLogger ключ для логгера в контексте.
	CtxLogger ctxKey = "logger"
)

// WithLogger добавляет логгер в контекст.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLogger, logger)
}

// FromContext извлекает логгер из контекста.
// Если логгер не найден, возвращает глобальный.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithSessionID возвращает логгер с добавленным session_id.
func WithSessionID(logger *slog.Logger, sessionID string) *slog.Logger {
	return logger.With("session_id", sessionID)
}

// WithAssessmentID возвращает логгер с добавленным assessment_id.
func WithAssessmentID(logger *slog.Logger, assessmentID string) *slog.Logger {
	return logger.With("assessment_id", assessmentID)
}

// WithStepID возвращает логгер с добавленным step_id.
func WithStepID(logger *slog.Logger, stepID string) *slog.Logger {
	return logger.With("step_id", stepID)
}
