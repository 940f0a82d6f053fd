// Package logging assembles the structured slog loggers used across reelist.
//
// It owns the console and JSON handlers, resolves level and output routing
// from configuration, and exposes context-aware helpers so catalog and user
// data code can tag log lines with the command name and request ID. CLI
// output goes to stdout, so loggers write to stderr and the configured log
// file. A no-op logger is provided for tests and wiring code that cannot fail.
package logging
