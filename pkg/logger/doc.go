// Package logger provides structured logging setup using Go's log/slog.
// It configures JSON output for production and text output for development.
package logger
