package content

import (
	"context"
	"strings"

	"festadmin/internal/media"
)

// Document is one stored content record. Fields holds the decoded JSON object
// exactly as persisted; Revision increases on every write.
type Document struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Fields     map[string]any `json:"fields"`
	Revision   int64          `json:"revision"`
}

// Repository is the persistence contract shared by the SQLite and MongoDB
// stores.
type Repository interface {
	// Each streams every document of collection in ID order. Returning an
	// error from fn stops the iteration and is returned unchanged.
	Each(ctx context.Context, collection string, fn func(Document) error) error
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Put inserts or replaces a whole document.
	Put(ctx context.Context, collection, id string, fields map[string]any) error
	// WriteMedia replaces the media keys of an existing document.
	WriteMedia(ctx context.Context, collection, id string, rec media.Record) error
	// UpdateMedia is WriteMedia guarded by the revision the caller read.
	UpdateMedia(ctx context.Context, collection, id string, revision int64, rec media.Record) error
	Collections(ctx context.Context) ([]string, error)
	Close() error
}

func validKey(collection, id string) bool {
	return strings.TrimSpace(collection) != "" && strings.TrimSpace(id) != ""
}
