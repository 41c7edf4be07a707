package sux

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with archive-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithName adds an entry name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// WithBitWidth adds a bit width field to the logger.
func (l *Logger) WithBitWidth(bitWidth int) *Logger {
	return &Logger{
		Logger: l.Logger.With("bit_width", bitWidth),
	}
}

// LogSave logs a save operation.
func (l *Logger) LogSave(ctx context.Context, e Entry, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", e.Name,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "save completed",
		"name", e.Name,
		"kind", e.Kind,
		"bit_width", e.BitWidth,
		"len", e.Len,
		"bytes", e.Size,
		"compression", e.Compression,
		"duration", duration,
	)
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(ctx context.Context, name string, length int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "load completed",
		"name", name,
		"len", length,
		"duration", duration,
	)
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "delete completed",
		"name", name,
	)
}

// LogBuild logs a parallel build.
func (l *Logger) LogBuild(ctx context.Context, name string, bitWidth, length int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"name", name,
			"bit_width", bitWidth,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "build completed",
		"name", name,
		"bit_width", bitWidth,
		"len", length,
		"duration", duration,
	)
}

// LogCatalog logs a catalog load or store.
func (l *Logger) LogCatalog(ctx context.Context, op string, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "catalog "+op+" failed",
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "catalog "+op,
		"entries", entries,
	)
}
