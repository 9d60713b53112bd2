package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pario-ai/findcache/pkg/cache"
	"github.com/pario-ai/findcache/pkg/config"
	"github.com/pario-ai/findcache/pkg/logging"
	"github.com/pario-ai/findcache/pkg/store"
	"github.com/pario-ai/findcache/pkg/store/badger"
	"github.com/pario-ai/findcache/pkg/store/file"
	"github.com/pario-ai/findcache/pkg/store/sqlite"
)

// app bundles what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) openBackend() (store.Backend, error) {
	dir := a.cfg.Cache.Dir
	switch a.cfg.Cache.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache root: %w", err)
		}
		return sqlite.New(filepath.Join(dir, "findcache.db"), a.logger)
	case config.BackendBadger:
		bc := badger.DefaultConfig(filepath.Join(dir, "badger"))
		bc.Logger = a.logger
		return badger.Open(bc)
	default:
		return file.New(dir, a.logger)
	}
}

func (a *app) openEngine(ctx context.Context, extra ...cache.Option) (*cache.Engine, error) {
	b, err := a.openBackend()
	if err != nil {
		return nil, err
	}
	opts := []cache.Option{
		cache.WithTTL(a.cfg.Cache.TTL),
		cache.WithLogger(a.logger),
		cache.WithMinAnchorLength(a.cfg.Cache.MinAnchorLength),
		cache.WithJanitor(a.cfg.Cache.JanitorInterval),
	}
	e, err := cache.Open(ctx, b, append(opts, extra...)...)
	if err != nil {
		b.Close()
		return nil, err
	}
	return e, nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
