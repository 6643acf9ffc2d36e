package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"festadmin/internal/config"
	"festadmin/internal/content"
	"festadmin/internal/mediadoc"
	"festadmin/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *content.Store
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		store:      testsupport.MustOpenStore(t, cfg),
		configPath: configPath,
		baseDir:    base,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *cliTestEnv) put(t *testing.T, collection, id, raw string) {
	t.Helper()
	testsupport.PutJSON(t, e.store, collection, id, raw)
}

func (e *cliTestEnv) images(t *testing.T, collection, id string) []string {
	t.Helper()
	doc := testsupport.MustGet(t, e.store, collection, id)
	raw, _ := doc.Fields[mediadoc.ImagesKey].([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			t.Fatalf("%s/%s: expected canonical string entries, got %#v", collection, id, doc.Fields[mediadoc.ImagesKey])
		}
		out = append(out, s)
	}
	return out
}

// index returns the stored role index, or -1 when the key is absent.
func (e *cliTestEnv) index(t *testing.T, collection, id, key string) int {
	t.Helper()
	doc := testsupport.MustGet(t, e.store, collection, id)
	raw, ok := doc.Fields[key]
	if !ok || raw == nil {
		return -1
	}
	n, ok := mediadoc.IntValue(raw)
	if !ok {
		t.Fatalf("%s/%s: %s is not an integer: %#v", collection, id, key, raw)
	}
	return n
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
