// Package logger installs the process-wide slog JSON handler and moves
// request-scoped loggers through context.Context. Recorder captures output
// for tests.
package logger
