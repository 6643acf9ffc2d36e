package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	collectionKey contextKey = "collection"
	recordIDKey   contextKey = "record_id"
)

// WithRunID annotates context with the migration run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the migration run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, runIDKey)
}

// WithCollection annotates context with the content collection being processed.
func WithCollection(ctx context.Context, collection string) context.Context {
	if collection == "" {
		return ctx
	}
	return context.WithValue(ctx, collectionKey, collection)
}

// CollectionFromContext returns the collection name if present.
func CollectionFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, collectionKey)
}

// WithRecordID annotates context with the content record identifier.
func WithRecordID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, recordIDKey, id)
}

// RecordIDFromContext extracts the content record identifier if present.
func RecordIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, recordIDKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
