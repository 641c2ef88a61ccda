package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dupesweep/internal/dedupe"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Root != "." {
		t.Errorf("default root = %q, want .", cfg.Root)
	}
	if cfg.MinSizeBytes != 1 {
		t.Errorf("default min size = %d, want 1", cfg.MinSizeBytes)
	}
	if cfg.HashWorkers <= 0 {
		t.Errorf("default hash workers = %d, want > 0", cfg.HashWorkers)
	}
	if cfg.Policy() != dedupe.PolicyFirstSeen {
		t.Errorf("default policy = %q, want first_seen", cfg.Policy())
	}
	if cfg.Prometheus.Port != 0 {
		t.Errorf("metrics endpoint should be disabled by default, port = %d", cfg.Prometheus.Port)
	}
}

func TestTrashStagingAlwaysExcluded(t *testing.T) {
	cfg := &Config{Excludes: []string{".git", "node_modules"}}
	if err := cfg.validateAndDefault(); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, e := range cfg.Excludes {
		if e == TrashStagingDir {
			found = true
		}
	}
	if !found {
		t.Errorf("excludes must always contain %s: %v", TrashStagingDir, cfg.Excludes)
	}
}

func TestDecodeYAML(t *testing.T) {
	yml := `
root: /data/photos
excludes:
  - .git
min_size_bytes: 4096
hash_workers: 2
survivor_policy: lexical_path
prometheus:
  port: 9091
database_path: /tmp/audit.db
`
	cfg, err := decode(strings.NewReader(yml))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := cfg.validateAndDefault(); err != nil {
		t.Fatal(err)
	}

	if cfg.Root != "/data/photos" {
		t.Errorf("root = %q", cfg.Root)
	}
	if cfg.MinSizeBytes != 4096 {
		t.Errorf("min size = %d", cfg.MinSizeBytes)
	}
	if cfg.HashWorkers != 2 {
		t.Errorf("workers = %d", cfg.HashWorkers)
	}
	if cfg.Policy() != dedupe.PolicyLexicalPath {
		t.Errorf("policy = %q", cfg.Policy())
	}
	if cfg.PrometheusAddress() != ":9091" {
		t.Errorf("prometheus address = %q", cfg.PrometheusAddress())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative min size", Config{MinSizeBytes: -1}},
		{"negative workers", Config{HashWorkers: -2}},
		{"unknown policy", Config{SurvivorPolicy: "keep_newest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.validateAndDefault(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte("root: "+tmpDir+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Root != tmpDir {
		t.Errorf("root = %q, want %q", cfg.Root, tmpDir)
	}
}

func TestResolveRoot(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{Root: tmpDir}
	if err := cfg.validateAndDefault(); err != nil {
		t.Fatal(err)
	}
	root, err := cfg.ResolveRoot()
	if err != nil {
		t.Fatalf("ResolveRoot failed: %v", err)
	}
	if !filepath.IsAbs(root) {
		t.Errorf("resolved root must be absolute: %q", root)
	}

	cfg.Root = filepath.Join(tmpDir, "missing")
	if _, err := cfg.ResolveRoot(); err == nil {
		t.Error("expected error for nonexistent root")
	}

	file := filepath.Join(tmpDir, "f")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Root = file
	if _, err := cfg.ResolveRoot(); err == nil {
		t.Error("expected error for non-directory root")
	}
}
