// Package logging assembles structured slog loggers and formatting helpers used
// across festadmin.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so migration code can tag log
// lines with run IDs, collections, and record IDs. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// Loggers are always passed explicitly; nothing here installs a process-wide
// default.
package logging
