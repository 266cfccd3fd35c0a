// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package: JSON output in prod, text
// elsewhere, with an environment attribute on every record.
package logger
