// Package content persists festival content documents (films, news,
// activities, partners) and exposes the Repository contract the media
// migration and the CLI operate on.
//
// Store is the SQLite implementation: one documents table keyed by
// (collection, id) holding the raw JSON document plus a revision counter used
// for optimistic concurrency. Documents are schemaless; the media keys are the
// only fields this package ever rewrites. Schema changes bump schemaVersion in
// schema.go.
package content
