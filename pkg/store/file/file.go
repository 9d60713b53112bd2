// Package file stores cache entries as JSON records on the local filesystem,
// one directory per category and one file per entry id.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pario-ai/findcache/pkg/models"
	"github.com/pario-ai/findcache/pkg/store"
)

const recordExt = ".json"

// Backend is a directory-per-category store rooted at a single directory.
type Backend struct {
	root   string
	logger *zap.Logger
}

// New creates the root directory if needed. A nil logger disables logging.
func New(root string, logger *zap.Logger) (*Backend, error) {
	if root == "" {
		return nil, errors.New("file store: root directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}
	return &Backend{root: root, logger: logger}, nil
}

// Root returns the cache root directory.
func (b *Backend) Root() string { return b.root }

// Store returns the store for category c, creating its directory.
func (b *Backend) Store(c models.Category) (store.Store, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("file store: unknown category %q", c)
	}
	dir := filepath.Join(b.root, c.DirName())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", c, err)
	}
	return &Store{dir: dir, category: c, logger: b.logger}, nil
}

// Close is a no-op; files are not held open between calls.
func (b *Backend) Close() error { return nil }

// Store keeps the records of one category.
type Store struct {
	dir      string
	category models.Category
	logger   *zap.Logger
}

// LoadAll reads every record file in the category directory.
func (s *Store) LoadAll(ctx context.Context) ([]models.Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s directory: %w", s.category, err)
	}

	var entries []models.Entry
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		if f.IsDir() || filepath.Ext(f.Name()) != recordExt {
			continue
		}
		e, err := s.readRecord(f.Name())
		if err != nil {
			s.logger.Warn("skipping unreadable cache record", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) readRecord(name string) (models.Entry, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return models.Entry{}, &store.ReadError{Category: s.category, Key: name, Err: err}
	}
	e, err := store.DecodeRecord(s.category, data)
	if err != nil {
		return models.Entry{}, &store.ReadError{Category: s.category, Key: name, Err: err}
	}
	if want := e.ID + recordExt; want != name {
		return models.Entry{}, &store.ReadError{Category: s.category, Key: name, Err: fmt.Errorf("file holds entry %s", e.ID)}
	}
	return e, nil
}

// Save writes the record to a temporary file and renames it into place.
func (s *Store) Save(_ context.Context, e models.Entry) error {
	path, err := s.path(e.ID)
	if err != nil {
		return &store.WriteError{Op: "save", Category: s.category, ID: e.ID, Err: err}
	}
	data, err := store.EncodeRecord(e)
	if err != nil {
		return &store.WriteError{Op: "save", Category: s.category, ID: e.ID, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return &store.WriteError{Op: "save", Category: s.category, ID: e.ID, Err: err}
	}
	tmpName := tmp.Name()
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmpName)
		return &store.WriteError{Op: "save", Category: s.category, ID: e.ID, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &store.WriteError{Op: "save", Category: s.category, ID: e.ID, Err: err}
	}
	return nil
}

// Delete removes the record file for id.
func (s *Store) Delete(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return &store.WriteError{Op: "delete", Category: s.category, ID: id, Err: err}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &store.WriteError{Op: "delete", Category: s.category, ID: id, Err: err}
	}
	return nil
}

// Clear removes every record file, leaving unrelated files alone.
func (s *Store) Clear(_ context.Context) error {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &store.WriteError{Op: "clear", Category: s.category, Err: err}
	}
	var errs []error
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != recordExt {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, f.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return &store.WriteError{Op: "clear", Category: s.category, Err: err}
	}
	return nil
}

// path maps an id to its record file, rejecting ids that would escape
// the category directory.
func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid entry id %q", id)
	}
	return filepath.Join(s.dir, id+recordExt), nil
}
