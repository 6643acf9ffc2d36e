// Package docstore implements content.Repository on MongoDB.
//
// Each festival collection maps to a MongoDB collection of the same name.
// Documents keep their own shape; the store adds a numeric _rev field that
// UpdateMedia uses for compare-and-swap. BSON values are converted to plain Go
// values before they reach the media layer so the normalizer sees the same
// types it sees from the SQLite store.
package docstore
