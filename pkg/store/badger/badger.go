// Package badger stores cache entries in an embedded BadgerDB key-value
// store. Keys are "<category>/<id>" and values are versioned records.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/pario-ai/findcache/pkg/models"
	"github.com/pario-ai/findcache/pkg/store"
)

// Config holds configuration for the BadgerDB instance.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Useful for tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// Logger receives entry-level warnings and BadgerDB's own output.
	// If nil, both are discarded.
	Logger *zap.Logger
}

// DefaultConfig returns a durable configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts zap to BadgerDB's Logger interface.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.sugar.Warnf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(strings.TrimSpace(format), args...)
}

// Backend is a BadgerDB-backed entry store.
type Backend struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens the database described by cfg.
func Open(cfg Config) (*Backend, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger store: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
		opts = opts.WithLogger(nil)
	} else {
		opts = opts.WithLogger(&badgerLogger{sugar: logger.Named("badger").Sugar()})
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Backend{db: db, logger: logger}, nil
}

// Store returns the store for category c.
func (b *Backend) Store(c models.Category) (store.Store, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("badger store: unknown category %q", c)
	}
	return &Store{db: b.db, category: c, prefix: []byte(string(c) + "/"), logger: b.logger}, nil
}

// Close flushes and closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Store is the key range of one category.
type Store struct {
	db       *badger.DB
	category models.Category
	prefix   []byte
	logger   *zap.Logger
}

func (s *Store) key(id string) []byte {
	return append(append([]byte(nil), s.prefix...), id...)
}

// LoadAll iterates the category prefix.
func (s *Store) LoadAll(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(s.prefix); it.ValidForPrefix(s.prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), string(s.prefix))

			var e models.Entry
			err := item.Value(func(val []byte) error {
				var derr error
				e, derr = store.DecodeRecord(s.category, val)
				return derr
			})
			if err == nil && e.ID != id {
				err = fmt.Errorf("key holds entry %s", e.ID)
			}
			if err != nil {
				s.logger.Warn("skipping unreadable cache record",
					zap.Error(&store.ReadError{Category: s.category, Key: id, Err: err}))
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return entries, fmt.Errorf("iterate %s entries: %w", s.category, err)
	}
	return entries, nil
}

// Save sets the entry's key.
func (s *Store) Save(_ context.Context, e models.Entry) error {
	data, err := store.EncodeRecord(e)
	if err != nil {
		return &store.WriteError{Op: "save", Category: s.category, ID: e.ID, Err: err}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(e.ID), data)
	})
	if err != nil {
		return &store.WriteError{Op: "save", Category: s.category, ID: e.ID, Err: err}
	}
	return nil
}

// Delete removes the entry's key if present.
func (s *Store) Delete(_ context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(id))
	})
	if err != nil {
		return &store.WriteError{Op: "delete", Category: s.category, ID: id, Err: err}
	}
	return nil
}

// Clear drops the whole category prefix.
func (s *Store) Clear(_ context.Context) error {
	if err := s.db.DropPrefix(s.prefix); err != nil {
		return &store.WriteError{Op: "clear", Category: s.category, Err: err}
	}
	return nil
}
