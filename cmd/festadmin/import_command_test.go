package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"festadmin/internal/services"
	"festadmin/internal/testsupport"
)

func writeImportFile(t *testing.T, dir, raw string) string {
	t.Helper()
	path := filepath.Join(dir, "export.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write import file: %v", err)
	}
	return path
}

func TestImportLoadsDocuments(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCollections("partners"))
	path := writeImportFile(t, env.baseDir, `{
  "collection": "partners",
  "documents": [
    {"id": "p-1", "name": "Sponsor", "images": [{"url": "logo.png", "isLogo": true}]},
    {"id": "p-2", "images": ["banner.png"]}
  ]
}`)

	out, _, err := runCLI(t, []string{"import", path}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Imported 2 document(s) into partners")

	doc := testsupport.MustGet(t, env.store, "partners", "p-1")
	if doc.Fields["name"] != "Sponsor" {
		t.Fatalf("unexpected document %#v", doc.Fields)
	}

	if _, _, err := runCLI(t, []string{"migrate-media"}, env.configPath); err != nil {
		t.Fatalf("migrate-media: %v", err)
	}
	if got := env.index(t, "partners", "p-1", "logoIndex"); got != 0 {
		t.Fatalf("logoIndex = %d, want 0 after migration", got)
	}
}

func TestImportCollectionOverride(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeImportFile(t, env.baseDir, `{"documents": [{"id": "a-1", "images": []}]}`)

	_, _, err := runCLI(t, []string{"import", path}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation without a collection, got %v", err)
	}

	out, _, err := runCLI(t, []string{"import", path, "--collection", "activities"}, env.configPath)
	if err != nil {
		t.Fatalf("import with collection: %v", err)
	}
	requireContains(t, out, "into activities")
	testsupport.MustGet(t, env.store, "activities", "a-1")
}

func TestImportRejectsInvalidFiles(t *testing.T) {
	env := setupCLITestEnv(t)

	path := writeImportFile(t, env.baseDir, `{"collection": "films", "documents": [{"title": "no id"}]}`)
	_, _, err := runCLI(t, []string{"import", path}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for schema violation, got %v", err)
	}

	_, _, err = runCLI(t, []string{"import", filepath.Join(env.baseDir, "missing.json")}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing file, got %v", err)
	}
}
