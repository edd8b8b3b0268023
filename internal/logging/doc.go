// Package logging assembles structured slog loggers and formatting helpers used
// across subconv.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so batch code can automatically
// tag log lines with the run ID, stage, and file under conversion. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Log output is diagnostic only: the per-file status lines users read on stdout
// are rendered by the present package, never through a logger.
package logging
