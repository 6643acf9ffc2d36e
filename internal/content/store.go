package content

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"festadmin/internal/media"
	"festadmin/internal/mediadoc"
	"festadmin/internal/services"
)

// eachPageSize bounds how many documents Each holds in memory at once. Rows are
// released before fn runs so callers may write while iterating.
const eachPageSize = 200

// Each streams every document of collection in ID order.
func (s *Store) Each(ctx context.Context, collection string, fn func(Document) error) error {
	ctx = ensureContext(ctx)
	after := ""
	for {
		page, err := s.page(ctx, collection, after)
		if err != nil {
			return err
		}
		for _, doc := range page {
			if err := fn(doc); err != nil {
				return err
			}
		}
		if len(page) < eachPageSize {
			return nil
		}
		after = page[len(page)-1].ID
	}
}

func (s *Store) page(ctx context.Context, collection, after string) ([]Document, error) {
	var docs []Document
	err := retryOnBusy(ctx, func() error {
		docs = docs[:0]
		rows, err := s.db.QueryContext(ctx,
			`SELECT id, document, revision FROM documents
			 WHERE collection = ? AND id > ?
			 ORDER BY id LIMIT ?`,
			collection, after, eachPageSize,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				id  string
				raw string
				rev int64
			)
			if err := rows.Scan(&id, &raw, &rev); err != nil {
				return err
			}
			fields, err := decodeDocument(raw)
			if err != nil {
				return fmt.Errorf("decode %s/%s: %w", collection, id, err)
			}
			docs = append(docs, Document{Collection: collection, ID: id, Fields: fields, Revision: rev})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

// Get returns one document or an ErrNotFound-marked error.
func (s *Store) Get(ctx context.Context, collection, id string) (*Document, error) {
	ctx = ensureContext(ctx)
	var (
		raw string
		rev int64
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT document, revision FROM documents WHERE collection = ? AND id = ?",
			collection, id,
		).Scan(&raw, &rev)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(collection, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	fields, err := decodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &Document{Collection: collection, ID: id, Fields: fields, Revision: rev}, nil
}

// Put inserts or replaces a whole document, bumping its revision.
func (s *Store) Put(ctx context.Context, collection, id string, fields map[string]any) error {
	if !validKey(collection, id) {
		return services.Wrap(services.ErrValidation, "content", "put", "collection and id are required", nil)
	}
	raw, err := encodeDocument(fields)
	if err != nil {
		return services.Wrap(services.ErrValidation, "content", "put", fmt.Sprintf("encode %s/%s", collection, id), err)
	}
	now := timestamp()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (collection, id, document, revision, created_at, updated_at)
			 VALUES (?, ?, ?, 1, ?, ?)
			 ON CONFLICT(collection, id) DO UPDATE SET
			   document = excluded.document,
			   revision = documents.revision + 1,
			   updated_at = excluded.updated_at`,
			collection, id, raw, now, now,
		)
		return err
	})
}

// WriteMedia replaces the media keys of an existing document and leaves every
// other field untouched.
func (s *Store) WriteMedia(ctx context.Context, collection, id string, rec media.Record) error {
	return s.rewriteMedia(ctx, collection, id, -1, rec)
}

// UpdateMedia is WriteMedia guarded by revision. A stale revision yields an
// ErrConflict-marked error and leaves the document unchanged.
func (s *Store) UpdateMedia(ctx context.Context, collection, id string, revision int64, rec media.Record) error {
	return s.rewriteMedia(ctx, collection, id, revision, rec)
}

func (s *Store) rewriteMedia(ctx context.Context, collection, id string, revision int64, rec media.Record) error {
	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			raw     string
			current int64
		)
		err := tx.QueryRowContext(ctx,
			"SELECT document, revision FROM documents WHERE collection = ? AND id = ?",
			collection, id,
		).Scan(&raw, &current)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(collection, id)
		}
		if err != nil {
			return err
		}
		if revision >= 0 && current != revision {
			return services.Wrap(services.ErrConflict, "content", "update media",
				fmt.Sprintf("%s/%s is at revision %d, caller read %d", collection, id, current, revision), nil)
		}
		fields, err := decodeDocument(raw)
		if err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		updated, err := encodeDocument(mediadoc.Apply(fields, rec))
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", collection, id, err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE documents SET document = ?, revision = revision + 1, updated_at = ?
			 WHERE collection = ? AND id = ?`,
			updated, timestamp(), collection, id,
		)
		return err
	})
}

// Collections lists the distinct collection names present in the store.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)
	var names []string
	err := retryOnBusy(ctx, func() error {
		names = names[:0]
		rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT collection FROM documents ORDER BY collection")
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

// Count returns the number of documents stored in collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	ctx = ensureContext(ctx)
	var n int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM documents WHERE collection = ?", collection).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func notFound(collection, id string) error {
	return services.Wrap(services.ErrNotFound, "content", "get", fmt.Sprintf("%s/%s", collection, id), nil)
}

func decodeDocument(raw string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func encodeDocument(fields map[string]any) (string, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
