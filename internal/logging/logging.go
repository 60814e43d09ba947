// Package logging sets up structured logging for the assistant services.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New creates a JSON logger on stdout tagged with the service name.
func New(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

// Setup creates the service logger and installs it as the slog default.
func Setup(service, level string) *slog.Logger {
	logger := New(service, level)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
