package testsupport

import (
	"context"
	"encoding/json"
	"testing"

	"festadmin/internal/config"
	"festadmin/internal/content"
)

// MustOpenStore opens a content.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *content.Store {
	t.Helper()

	store, err := content.Open(cfg)
	if err != nil {
		t.Fatalf("content.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// PutJSON stores a document decoded from a JSON object literal.
func PutJSON(t testing.TB, repo content.Repository, collection, id, raw string) {
	t.Helper()

	fields := DecodeJSON(t, raw)
	if err := repo.Put(context.Background(), collection, id, fields); err != nil {
		t.Fatalf("Put %s/%s: %v", collection, id, err)
	}
}

// DecodeJSON decodes a JSON object literal the way the stores do.
func DecodeJSON(t testing.TB, raw string) map[string]any {
	t.Helper()

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return fields
}

// MustGet fetches a stored document.
func MustGet(t testing.TB, repo content.Repository, collection, id string) *content.Document {
	t.Helper()

	doc, err := repo.Get(context.Background(), collection, id)
	if err != nil {
		t.Fatalf("Get %s/%s: %v", collection, id, err)
	}
	return doc
}
