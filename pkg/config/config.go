package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Environment variables that override the file.
const (
	EnvDir      = "FINDCACHE_DIR"
	EnvTTL      = "FINDCACHE_TTL"
	EnvBackend  = "FINDCACHE_BACKEND"
	EnvLogLevel = "FINDCACHE_LOG_LEVEL"
)

// Config holds all findcache configuration.
type Config struct {
	Cache CacheConfig `yaml:"cache"`
	Merge MergeConfig `yaml:"merge"`
	Log   LogConfig   `yaml:"log"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	Dir             string        `yaml:"dir" validate:"required"`
	TTL             time.Duration `yaml:"ttl" validate:"gte=0"`
	Backend         string        `yaml:"backend" validate:"oneof=file sqlite badger"`
	MinAnchorLength int           `yaml:"min_anchor_length" validate:"gte=1"`
	JanitorInterval time.Duration `yaml:"janitor_interval" validate:"gte=0"`
}

// UnmarshalYAML decodes ttl with ParseTTL so the file accepts the same
// forms as FINDCACHE_TTL.
func (c *CacheConfig) UnmarshalYAML(n *yaml.Node) error {
	type plain CacheConfig
	if n.Kind != yaml.MappingNode {
		return n.Decode((*plain)(c))
	}
	rest := *n
	rest.Content = nil
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Value != "ttl" {
			rest.Content = append(rest.Content, k, v)
			continue
		}
		if v.Tag == "!!null" {
			continue
		}
		ttl, err := ParseTTL(v.Value)
		if err != nil {
			return fmt.Errorf("cache.ttl: %w", err)
		}
		c.TTL = ttl
	}
	return rest.Decode((*plain)(c))
}

// MergeConfig controls chunk splitting and merging.
type MergeConfig struct {
	NarrativeFields []string `yaml:"narrative_fields"`
	NarrativeNote   string   `yaml:"narrative_note"`
	ChunkSize       int      `yaml:"chunk_size" validate:"gt=0"`
	ChunkOverlap    int      `yaml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Dir:             "cache",
			TTL:             30 * 24 * time.Hour,
			Backend:         BackendFile,
			MinAnchorLength: 1,
		},
		Merge: MergeConfig{
			NarrativeFields: []string{"overall_assessment"},
			NarrativeNote:   "\n\nNote: this assessment is based on an analysis of multiple parts.",
			ChunkSize:       4000,
			ChunkOverlap:    500,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML config file, expands environment variables, applies
// the FINDCACHE_* overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finish(cfg)
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		cfg, err := Load(path)
		if !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}
	return finish(Default())
}

func finish(cfg *Config) (*Config, error) {
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays the FINDCACHE_* environment variables on cfg.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDir); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv(EnvTTL); v != "" {
		ttl, err := ParseTTL(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTTL, err)
		}
		cfg.Cache.TTL = ttl
	}
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	return nil
}

// ParseTTL accepts a Go duration ("720h") or a whole number of days ("30d").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid ttl %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid ttl %q", s)
	}
	return d, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
