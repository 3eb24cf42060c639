package pincol

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with pincol-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithCollection adds a collection name field to the logger.
func (l *Logger) WithCollection(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("collection", name),
	}
}

// LogGrowth logs the outcome of a growth episode.
func (l *Logger) LogGrowth(ctx context.Context, from, to, requested int, d time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "growth failed",
			"capacity", from,
			"requested", requested,
			"duration", d,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "growth completed",
		"from", from,
		"to", to,
		"requested", requested,
		"duration", d,
	)
}

// LogClear logs a collection reset.
func (l *Logger) LogClear(ctx context.Context, capacity int) {
	l.DebugContext(ctx, "collection cleared", "capacity", capacity)
}

// LogClose logs a collection teardown.
func (l *Logger) LogClose(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed", "error", err)
		return
	}
	l.DebugContext(ctx, "collection closed")
}
