// Package store defines durable storage for cache entries.
//
// A Backend hands out one Store per category. Stores never keep entries in
// memory between calls; the cache engine owns the in-memory view. Every
// backend persists entries in the versioned record format produced by
// EncodeRecord so that records can be moved between backends and old
// formats are detected rather than misread.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pario-ai/findcache/pkg/models"
)

// Store persists the entries of a single category.
type Store interface {
	// LoadAll returns every readable entry. Unreadable records are skipped
	// and logged; only a failure to enumerate the category is returned.
	LoadAll(ctx context.Context) ([]models.Entry, error)
	// Save inserts or replaces the entry with the same id.
	Save(ctx context.Context, e models.Entry) error
	// Delete removes an entry. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// Clear removes every entry of the category.
	Clear(ctx context.Context) error
}

// Backend opens per-category stores on one durable medium.
type Backend interface {
	Store(c models.Category) (Store, error)
	Close() error
}

// ErrUnsupportedVersion marks a record written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported record schema version")

// ReadError reports a record that could not be read or decoded.
type ReadError struct {
	Category models.Category
	Key      string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s record %s: %v", e.Category, e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed save, delete or clear.
type WriteError struct {
	Op       string
	Category models.Category
	ID       string
	Err      error
}

func (e *WriteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s records: %v", e.Op, e.Category, e.Err)
	}
	return fmt.Sprintf("%s %s record %s: %v", e.Op, e.Category, e.ID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
