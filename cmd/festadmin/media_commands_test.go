package main

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"festadmin/internal/services"
	"festadmin/internal/testsupport"
)

func seedGallery(t *testing.T, env *cliTestEnv) {
	t.Helper()
	env.put(t, "films", "f-1", `{"title": "Gallery", "poster": "poster.jpg", "images": ["a.jpg", "b.jpg", "c.jpg"], "coverIndex": 0}`)
}

func TestMediaShow(t *testing.T) {
	env := setupCLITestEnv(t)
	seedGallery(t, env)

	out, _, err := runCLI(t, []string{"media", "show", "films", "f-1"}, env.configPath)
	if err != nil {
		t.Fatalf("media show: %v", err)
	}
	requireContains(t, out, "Films / f-1 (revision 1, canonical)")
	requireContains(t, out, "b.jpg")
	requireContains(t, out, "Cover:  a.jpg\n")
	requireContains(t, out, "Logo:   -")
	requireContains(t, out, "Poster: poster.jpg")
	requireContains(t, out, "Valid:  yes")

	out, _, err = runCLI(t, []string{"media", "show", "films", "f-1", "-o", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("media show json: %v", err)
	}
	var view mediaView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Cover == nil || *view.Cover != "a.jpg" || view.Logo != nil || len(view.Gallery) != 3 || !view.Gallery[0].IsCover {
		t.Fatalf("unexpected view %+v", view)
	}

	_, _, err = runCLI(t, []string{"media", "show", "films", "missing"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMediaShowLegacyRecordFallsBackToFirstAsset(t *testing.T) {
	env := setupCLITestEnv(t)
	env.put(t, "news", "n-1", `{"images": [{"url": "x.jpg"}, {"isLogo": true}, {"url": "y.jpg", "isLogo": true}]}`)

	out, _, err := runCLI(t, []string{"media", "show", "news", "n-1"}, env.configPath)
	if err != nil {
		t.Fatalf("media show: %v", err)
	}
	requireContains(t, out, "(revision 1, malformed)")
	requireContains(t, out, "Cover:  x.jpg (first asset)")
	requireContains(t, out, "Logo:   y.jpg")
	requireContains(t, out, "dropped images[1]: object entry has no url")
}

func TestMediaSetAndClearRoles(t *testing.T) {
	env := setupCLITestEnv(t)
	seedGallery(t, env)

	if _, _, err := runCLI(t, []string{"media", "set-logo", "films", "f-1", "2"}, env.configPath); err != nil {
		t.Fatalf("set-logo: %v", err)
	}
	if got := env.index(t, "films", "f-1", "logoIndex"); got != 2 {
		t.Fatalf("logoIndex = %d, want 2", got)
	}

	out, _, err := runCLI(t, []string{"media", "set-cover", "films", "f-1", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("set-cover: %v", err)
	}
	requireContains(t, out, "Cover:  b.jpg")
	requireContains(t, out, "Logo:   c.jpg")

	if _, _, err := runCLI(t, []string{"media", "clear-logo", "films", "f-1"}, env.configPath); err != nil {
		t.Fatalf("clear-logo: %v", err)
	}
	if got := env.index(t, "films", "f-1", "logoIndex"); got != -1 {
		t.Fatalf("logoIndex = %d, want cleared", got)
	}
	if _, _, err := runCLI(t, []string{"media", "clear-cover", "films", "f-1"}, env.configPath); err != nil {
		t.Fatalf("clear-cover: %v", err)
	}
	if got := env.index(t, "films", "f-1", "coverIndex"); got != -1 {
		t.Fatalf("coverIndex = %d, want cleared", got)
	}

	doc := testsupport.MustGet(t, env.store, "films", "f-1")
	if doc.Fields["title"] != "Gallery" || doc.Fields["poster"] != "poster.jpg" {
		t.Fatalf("expected other fields preserved, got %#v", doc.Fields)
	}
	if doc.Revision != 5 {
		t.Fatalf("revision = %d, want 5 after four edits", doc.Revision)
	}
}

func TestMediaEditRejections(t *testing.T) {
	env := setupCLITestEnv(t)
	seedGallery(t, env)

	tests := []struct {
		name string
		args []string
	}{
		{"out of range", []string{"media", "set-cover", "films", "f-1", "9"}},
		{"not an integer", []string{"media", "remove", "films", "f-1", "first"}},
		{"collision", []string{"media", "set-logo", "films", "f-1", "0"}},
		{"empty url", []string{"media", "add", "films", "f-1", "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args, env.configPath)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if services.ExitCode(err) != services.ExitValidation {
				t.Fatalf("unexpected exit code %d", services.ExitCode(err))
			}
		})
	}
	if doc := testsupport.MustGet(t, env.store, "films", "f-1"); doc.Revision != 1 {
		t.Fatalf("rejected edits must not write, revision=%d", doc.Revision)
	}
}

func TestMediaEditRepairFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	seedGallery(t, env)

	if _, _, err := runCLI(t, []string{"media", "set-logo", "--repair", "films", "f-1", "0"}, env.configPath); err != nil {
		t.Fatalf("set-logo --repair: %v", err)
	}
	if got := env.index(t, "films", "f-1", "coverIndex"); got != 0 {
		t.Fatalf("coverIndex = %d, want kept", got)
	}
	if got := env.index(t, "films", "f-1", "logoIndex"); got != -1 {
		t.Fatalf("logoIndex = %d, want cleared by repair", got)
	}
}

func TestMediaAssetEditsKeepRoles(t *testing.T) {
	env := setupCLITestEnv(t)
	seedGallery(t, env)

	if _, _, err := runCLI(t, []string{"media", "add", "films", "f-1", "z.jpg", "--at", "0"}, env.configPath); err != nil {
		t.Fatalf("add --at: %v", err)
	}
	if got := env.images(t, "films", "f-1"); !slices.Equal(got, []string{"z.jpg", "a.jpg", "b.jpg", "c.jpg"}) {
		t.Fatalf("images = %v", got)
	}
	if got := env.index(t, "films", "f-1", "coverIndex"); got != 1 {
		t.Fatalf("coverIndex = %d, want 1 (still a.jpg)", got)
	}

	if _, _, err := runCLI(t, []string{"media", "add", "films", "f-1", "tail.jpg"}, env.configPath); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := runCLI(t, []string{"media", "move", "films", "f-1", "1", "3"}, env.configPath); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := env.images(t, "films", "f-1"); !slices.Equal(got, []string{"z.jpg", "b.jpg", "c.jpg", "a.jpg", "tail.jpg"}) {
		t.Fatalf("images after move = %v", got)
	}
	if got := env.index(t, "films", "f-1", "coverIndex"); got != 3 {
		t.Fatalf("coverIndex = %d, want 3 (follows a.jpg)", got)
	}

	out, _, err := runCLI(t, []string{"media", "remove", "films", "f-1", "3"}, env.configPath)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := env.index(t, "films", "f-1", "coverIndex"); got != -1 {
		t.Fatalf("coverIndex = %d, want cleared with its asset", got)
	}
	requireContains(t, out, "Cover:  z.jpg (first asset)")
}

func TestMediaEditCanonicalizesLegacyRecord(t *testing.T) {
	env := setupCLITestEnv(t)
	env.put(t, "news", "n-1", `{"headline": "Lineup", "images": [{"url": "x.jpg"}, {"url": "y.jpg", "isCover": true}]}`)

	_, stderr, err := runCLI(t, []string{"media", "set-logo", "news", "n-1", "0"}, env.configPath)
	if err != nil {
		t.Fatalf("set-logo: %v", err)
	}
	requireNotContains(t, stderr, "warning:")
	if got := env.images(t, "news", "n-1"); !slices.Equal(got, []string{"x.jpg", "y.jpg"}) {
		t.Fatalf("images = %v", got)
	}
	if got := env.index(t, "news", "n-1", "coverIndex"); got != 1 {
		t.Fatalf("coverIndex = %d, want 1 from the legacy flag", got)
	}
	if got := env.index(t, "news", "n-1", "logoIndex"); got != 0 {
		t.Fatalf("logoIndex = %d, want 0", got)
	}
}
