package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := WithSessionID(NewLogger(&buf, "INFO", "json"), "s-1")
	logger.Debug("hidden")
	logger.Info("visible", "step_id", "a")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if entry["session_id"] != "s-1" || entry["step_id"] != "a" || entry["msg"] != "visible" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	WithAssessmentID(NewLogger(&buf, "DEBUG", "text"), "a-1").Debug("hello")

	if !strings.Contains(buf.String(), "assessment_id=a-1") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger")
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("expected logger from context")
	}
}
