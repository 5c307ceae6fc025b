package admin

import (
	"context"
	"log/slog"
)

// Telemetry records admin events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes events to a structured logger.
type LogTelemetry struct {
	Logger *slog.Logger
}

// Record logs the event at info level, or warn when the payload carries an error.
func (t LogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := make([]any, 0, len(payload)*2)
	for key, value := range payload {
		attrs = append(attrs, key, value)
	}
	level := slog.LevelInfo
	if _, failed := payload["error"]; failed {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, event, attrs...)
}

// MultiTelemetry fans out to several recorders.
type MultiTelemetry []Telemetry

// Record forwards to every non-nil recorder.
func (m MultiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, t := range m {
		if t != nil {
			t.Record(ctx, event, payload)
		}
	}
}
