// Package services defines shared utilities consumed by the migration engine,
// the content stores, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, collections, and record IDs for
//     logging.
//   - Structured error markers plus the Wrap helper that keep failure classes
//     matchable with errors.Is.
//   - ExitCode, which turns those markers into stable CLI exit statuses.
//
// Use these helpers when wiring new commands so operational behaviour (error
// handling, observability) stays uniform.
package services
