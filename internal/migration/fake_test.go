package migration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"testing"

	"festadmin/internal/content"
	"festadmin/internal/media"
	"festadmin/internal/mediadoc"
)

// memorySource is an in-memory store that also acts as the writer.
type memorySource struct {
	mu     sync.Mutex
	docs   map[string]map[string]map[string]any
	writes int

	// failAfter makes Each return enumErr after yielding that many documents.
	failAfter int
	enumErr   error
	// beforeYield runs before each document is handed to the callback.
	beforeYield func(n int)
	// writeErr returns a per-record write error.
	writeErr func(collection, id string) error
}

func newMemorySource() *memorySource {
	return &memorySource{docs: make(map[string]map[string]map[string]any), failAfter: -1}
}

func (m *memorySource) put(t testing.TB, collection, id, raw string) {
	t.Helper()
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatalf("decode fixture %s/%s: %v", collection, id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]map[string]any)
	}
	m.docs[collection][id] = fields
}

func (m *memorySource) Each(ctx context.Context, collection string, fn func(content.Document) error) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.docs[collection]))
	for id := range m.docs[collection] {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	slices.Sort(ids)

	for n, id := range ids {
		if n == m.failAfter {
			return m.enumErr
		}
		if m.beforeYield != nil {
			m.beforeYield(n)
		}
		m.mu.Lock()
		fields := m.docs[collection][id]
		m.mu.Unlock()
		if err := fn(content.Document{Collection: collection, ID: id, Fields: fields, Revision: 1}); err != nil {
			return err
		}
	}
	return nil
}

func (m *memorySource) write(ctx context.Context, collection, id string, rec media.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.writeErr != nil {
		if err := m.writeErr(collection, id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.docs[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s not found", collection, id)
	}
	// Round-trip through JSON so stored values look like freshly read ones.
	data, err := json.Marshal(mediadoc.Apply(current, rec))
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	m.docs[collection][id] = fields
	m.writes++
	return nil
}

func (m *memorySource) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memorySource) fields(collection, id string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[collection][id]
}

// seedScenarioCorpus loads 85 canonical valid records, 10 legacy tagged
// records, and 5 records with out-of-range indexes into collection.
func seedScenarioCorpus(t testing.TB, src interface {
	put(testing.TB, string, string, string)
}, collection string) {
	t.Helper()
	for i := range 85 {
		raw := fmt.Sprintf(`{"title":"Film %d","images":["a-%d.jpg","b-%d.jpg"],"coverIndex":0}`, i, i, i)
		if i%3 == 0 {
			raw = fmt.Sprintf(`{"title":"Film %d","images":["a-%d.jpg","b-%d.jpg"],"coverIndex":1,"logoIndex":0}`, i, i, i)
		}
		if i%5 == 0 {
			raw = fmt.Sprintf(`{"title":"Film %d","images":[]}`, i)
		}
		src.put(t, collection, fmt.Sprintf("canonical-%03d", i), raw)
	}
	for i := range 10 {
		raw := fmt.Sprintf(`{"title":"Legacy %d","images":[{"url":"x-%d.jpg","isCover":true},{"url":"y-%d.jpg"},{"url":"z-%d.jpg","isLogo":true}]}`, i, i, i, i)
		src.put(t, collection, fmt.Sprintf("legacy-%03d", i), raw)
	}
	for i := range 5 {
		raw := fmt.Sprintf(`{"title":"Broken %d","images":["a.jpg","b.jpg","c.jpg"],"coverIndex":5}`, i)
		src.put(t, collection, fmt.Sprintf("oob-%03d", i), raw)
	}
}
