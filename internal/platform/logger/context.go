package logger

import (
	"context"
	"log/slog"
)

// loggerContextKey is the private type for the logger value stored in a
// context. An unexported struct key cannot collide with keys from other
// packages.
type loggerContextKey struct{}

// WithLogger returns a copy of ctx carrying the given logger. Request
// handlers attach a request-scoped logger so downstream code logs with the
// request's attributes already bound.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		// ALLOW-PANIC: a nil logger stored in the context would turn every
		// downstream FromContext call into a nil dereference.
		panic("nil logger passed to WithLogger")
	}
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or nil when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerContextKey{}).(*slog.Logger)
	return logger
}

// FromContextOrDefault returns the logger stored in ctx, falling back to
// defaultLogger when ctx is nil or carries no logger.
func FromContextOrDefault(ctx context.Context, defaultLogger *slog.Logger) *slog.Logger {
	if logger := FromContext(ctx); logger != nil {
		return logger
	}
	return defaultLogger
}
