// Package sqlite stores cache entries in a single SQLite database, one row
// per entry, partitioned by a category column.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/pario-ai/findcache/pkg/models"
	"github.com/pario-ai/findcache/pkg/store"
)

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	category TEXT NOT NULL,
	id TEXT NOT NULL,
	record BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (category, id)
);
`

// Backend is a SQLite-backed entry store.
type Backend struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens (or creates) the database at dbPath and migrates the schema.
func New(dbPath string, logger *zap.Logger) (*Backend, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite store: database path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createEntriesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &Backend{db: db, logger: logger}, nil
}

// Store returns the store for category c.
func (b *Backend) Store(c models.Category) (store.Store, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("sqlite store: unknown category %q", c)
	}
	return &Store{db: b.db, category: c, logger: b.logger}, nil
}

// Close releases the database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Store is the view of one category inside the shared database.
type Store struct {
	db       *sql.DB
	category models.Category
	logger   *zap.Logger
}

// LoadAll returns every decodable row of the category.
func (s *Store) LoadAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, record FROM cache_entries WHERE category = ? ORDER BY id`,
		string(s.category),
	)
	if err != nil {
		return nil, fmt.Errorf("query %s entries: %w", s.category, err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			s.logger.Warn("skipping unreadable cache row",
				zap.Error(&store.ReadError{Category: s.category, Key: id, Err: err}))
			continue
		}
		e, err := store.DecodeRecord(s.category, data)
		if err == nil && e.ID != id {
			err = fmt.Errorf("row holds entry %s", e.ID)
		}
		if err != nil {
			s.logger.Warn("skipping unreadable cache row",
				zap.Error(&store.ReadError{Category: s.category, Key: id, Err: err}))
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save upserts the entry row.
func (s *Store) Save(ctx context.Context, e models.Entry) error {
	data, err := store.EncodeRecord(e)
	if err != nil {
		return &store.WriteError{Op: "save", Category: s.category, ID: e.ID, Err: err}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (category, id, record, updated_at) VALUES (?, ?, ?, ?)`,
		string(s.category), e.ID, data, time.Now().UTC(),
	)
	if err != nil {
		return &store.WriteError{Op: "save", Category: s.category, ID: e.ID, Err: err}
	}
	return nil
}

// Delete removes the entry row if present.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE category = ? AND id = ?`,
		string(s.category), id,
	)
	if err != nil {
		return &store.WriteError{Op: "delete", Category: s.category, ID: id, Err: err}
	}
	return nil
}

// Clear removes every row of the category.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE category = ?`, string(s.category))
	if err != nil {
		return &store.WriteError{Op: "clear", Category: s.category, Err: err}
	}
	return nil
}
