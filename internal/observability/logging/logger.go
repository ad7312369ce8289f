// Package logging builds the slog loggers used by the API and worker
// binaries and carries the request ID into per-request log entries.
package logging

import (
	"context"
	"log/slog"
	"os"

	"campaign-relay/internal/handler/http/requestid"
)

// parseLevel maps LOG_LEVEL to a slog level. Unknown values fall back to info.
func parseLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a JSON logger levelled by LOG_LEVEL. Source locations
// are attached only at debug level.
func NewLogger() *slog.Logger {
	level := parseLevel()
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}))
}

// NewTextLogger is the human-readable variant for local development.
func NewTextLogger() *slog.Logger {
	level := parseLevel()
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}))
}

// WithRequestID attaches the request ID from ctx so every entry for a
// request can be correlated. Without an ID the logger is returned as is.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}
