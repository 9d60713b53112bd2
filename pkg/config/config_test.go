package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "findcache.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cache.Dir != "cache" {
		t.Errorf("expected cache dir, got %s", cfg.Cache.Dir)
	}
	if cfg.Cache.TTL != 720*time.Hour {
		t.Errorf("expected 30 day TTL, got %v", cfg.Cache.TTL)
	}
	if cfg.Merge.ChunkSize != 4000 || cfg.Merge.ChunkOverlap != 500 {
		t.Errorf("unexpected chunking %d/%d", cfg.Merge.ChunkSize, cfg.Merge.ChunkOverlap)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_CACHE_ROOT", "/var/lib/findcache")

	path := writeConfig(t, `
cache:
  dir: ${TEST_CACHE_ROOT}
  ttl: 48h
  backend: sqlite
  min_anchor_length: 8
  janitor_interval: 10m
merge:
  narrative_fields: [overall_assessment, verdict]
  chunk_size: 2000
  chunk_overlap: 250
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Dir != "/var/lib/findcache" {
		t.Errorf("env var not expanded: got %s", cfg.Cache.Dir)
	}
	if cfg.Cache.TTL != 48*time.Hour {
		t.Errorf("expected 48h TTL, got %v", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend != BackendSQLite {
		t.Errorf("expected sqlite backend, got %s", cfg.Cache.Backend)
	}
	if cfg.Cache.MinAnchorLength != 8 {
		t.Errorf("expected min anchor 8, got %d", cfg.Cache.MinAnchorLength)
	}
	if cfg.Cache.JanitorInterval != 10*time.Minute {
		t.Errorf("expected 10m janitor, got %v", cfg.Cache.JanitorInterval)
	}
	if len(cfg.Merge.NarrativeFields) != 2 {
		t.Errorf("expected 2 narrative fields, got %v", cfg.Merge.NarrativeFields)
	}
	if cfg.Merge.NarrativeNote == "" {
		t.Error("unset narrative note must keep its default")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json logs, got %s", cfg.Log.Format)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDir, "/tmp/override")
	t.Setenv(EnvTTL, "7d")
	t.Setenv(EnvBackend, "BADGER")
	t.Setenv(EnvLogLevel, "warn")

	path := writeConfig(t, "cache:\n  dir: ignored\n  ttl: 1h\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Dir != "/tmp/override" {
		t.Errorf("dir = %s", cfg.Cache.Dir)
	}
	if cfg.Cache.TTL != 7*24*time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend != BackendBadger {
		t.Errorf("backend = %s", cfg.Cache.Backend)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %s", cfg.Log.Level)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "cache: ["},
		{"unknown backend", "cache:\n  backend: redis\n"},
		{"overlap not below size", "merge:\n  chunk_size: 100\n  chunk_overlap: 100\n"},
		{"zero anchor", "cache:\n  min_anchor_length: 0\n"},
		{"bad ttl", "cache:\n  ttl: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadTTLDays(t *testing.T) {
	tests := []struct {
		content string
		want    time.Duration
	}{
		{"cache:\n  ttl: 30d\n  backend: sqlite\n", 720 * time.Hour},
		{"cache:\n  ttl: 48h\n", 48 * time.Hour},
		{"cache:\n  ttl: \"7d\"\n", 7 * 24 * time.Hour},
		{"cache:\n  backend: sqlite\n", 720 * time.Hour},
	}
	for _, tt := range tests {
		cfg, err := Load(writeConfig(t, tt.content))
		if err != nil {
			t.Errorf("Load(%q): %v", tt.content, err)
			continue
		}
		if cfg.Cache.TTL != tt.want {
			t.Errorf("Load(%q) ttl = %v, want %v", tt.content, cfg.Cache.TTL, tt.want)
		}
		if cfg.Cache.MinAnchorLength != Default().Cache.MinAnchorLength {
			t.Errorf("Load(%q) dropped defaults: min_anchor_length = %d", tt.content, cfg.Cache.MinAnchorLength)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("/nonexistent/config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("expected defaults, got backend %s", cfg.Cache.Backend)
	}

	t.Setenv(EnvTTL, "soon")
	if _, err := LoadOrDefault(""); err == nil {
		t.Error("expected error for invalid FINDCACHE_TTL")
	}
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"30d", 720 * time.Hour, true},
		{"0d", 0, true},
		{"90m", 90 * time.Minute, true},
		{" 2h ", 2 * time.Hour, true},
		{"-1h", 0, false},
		{"xd", 0, false},
		{"week", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseTTL(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseTTL(%q) err = %v", tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseTTL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
