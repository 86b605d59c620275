// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Setup installs the configured logger as the process-wide
// default so components without an injected logger still emit structured output.
package logger
