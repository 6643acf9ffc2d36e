// Package migration sweeps stored content documents, converts their media
// fields to canonical form, repairs invalid role pointers, and writes back
// only the records that changed.
//
// Migrate is record-isolated: a failed write lands in the report and the run
// continues; only a failure to enumerate a collection aborts. Cancellation is
// honoured between records, never in the middle of one. Because normalize,
// validate, and repair are each idempotent, re-running after an interrupted or
// completed apply converges to zero changes.
//
// Audit is the read-only companion used by check-media: it classifies the
// stored encoding of each document and lists validation issues without
// repairing anything.
package migration
