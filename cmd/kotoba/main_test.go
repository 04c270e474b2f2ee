package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperjump/kotoba/internal/config"
	"github.com/hyperjump/kotoba/internal/search"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after text are moved first",
			args:     []string{"deep learning", "-k", "3"},
			expected: []string{"-k", "3", "deep learning"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-k", "3", "deep learning"},
			expected: []string{"-k", "3", "deep learning"},
		},
		{
			name:     "text only returns unchanged",
			args:     []string{"deep learning"},
			expected: []string{"deep learning"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"one", "two", "-output", "json"},
			expected: []string{"-output", "json", "one", "two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, argsReorder(tt.args)); diff != "" {
				t.Errorf("argsReorder() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"learning"}, "learning"},
		{"multiple words", []string{"deep", "learning"}, "deep learning"},
		{"quoted phrase", []string{"deep learning"}, "deep learning"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildQuery(tt.args); got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
storage:
  database_path: "./glossary.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
	if filepath.Base(cfg.Storage.DatabasePath) != "glossary.db" || !filepath.IsAbs(cfg.Storage.DatabasePath) {
		t.Errorf("database_path = %s", cfg.Storage.DatabasePath)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
retrieval:
  default_k: 7
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 || cfg.Retrieval.DefaultK != 7 {
		t.Errorf("unexpected config: %+v %+v", cfg.Server, cfg.Retrieval)
	}
}

func TestLoadConfig_missingExplicitPath(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config")
	}
}

func TestLoadConfig_builtinDefaults(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("a system config exists at " + defaultConfigPath)
	}
	chdir(t, t.TempDir())

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want built-in defaults", resolved)
	}
	if cfg.Retrieval.DefaultK != 5 || cfg.Server.Port != 8080 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestGlossaryFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.tsv", "b.csv", "notes.json", "c.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\ty\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.tsv"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := glossaryFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.tsv"), filepath.Join(dir, "b.csv"), filepath.Join(dir, "c.md")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("glossaryFiles (-want +got):\n%s", diff)
	}

	single, err := glossaryFiles(filepath.Join(dir, "a.tsv"))
	if err != nil || len(single) != 1 {
		t.Errorf("single file = %v, %v", single, err)
	}
	if _, err := glossaryFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = filepath.Join(dir, "db", "glossary.db")
	cfg.Storage.ModelDir = filepath.Join(dir, "model")
	return cfg
}

func TestComponents_ImportBuildRetrieve(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	c, err := initializeComponents(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Importer.ImportSample(ctx); err != nil {
		t.Fatal(err)
	}
	model, err := c.Engine.Rebuild(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if model.Matrix.Rows() == 0 {
		t.Fatal("empty model after sample import")
	}
	man, err := c.Cache.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	if man.BuildID != model.BuildID {
		t.Errorf("cached build id = %s, want %s", man.BuildID, model.BuildID)
	}

	// A second process loads the cached model instead of rebuilding.
	c2, err := initializeComponents(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()
	if err := c2.Engine.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if st := c2.Engine.Status(); st.Source != search.SourceCache || st.BuildID != model.BuildID {
		t.Errorf("status = %+v, want cached build %s", st, model.BuildID)
	}
}

func TestNewWatcher_RefreshesOnImport(t *testing.T) {
	cfg := testConfig(t)
	inbox := filepath.Join(t.TempDir(), "inbox")
	cfg.Watch.Directories = []string{inbox}
	cfg.Watch.DebounceMs = 20
	ctx := context.Background()

	c, err := initializeComponents(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, err := c.Importer.ImportSample(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Engine.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	before := c.Engine.Status().Terms

	w := newWatcher(cfg, c, nil)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(inbox, "new.tsv"), []byte("quantum annealing\t量子退火\n"), 0600); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for c.Engine.Status().Terms != before+1 {
		if time.Now().After(deadline) {
			t.Fatalf("model terms = %d, want %d", c.Engine.Status().Terms, before+1)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWriteStatusText(t *testing.T) {
	disk := int64(4096)
	status := &statusResponse{
		Terms: 3,
		Model: search.Status{
			Initialized: true,
			BuildID:     "b1",
			BuiltAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Terms:       2,
			Features:    9,
		},
		DiskUsageBytes: &disk,
		Config:         map[string]interface{}{"default_k": 5},
	}
	var buf bytes.Buffer
	writeStatusText(&buf, status)
	out := buf.String()
	for _, want := range []string{
		"terms:              3",
		"model_build_id:     b1",
		"model_built_at:     2024-01-02T03:04:05Z",
		"model is out of date",
		"disk_usage_bytes:   4096",
		"default_k:          5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
