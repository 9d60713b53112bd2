// Package cache reuses earlier analysis findings for source code that has
// not meaningfully changed.
//
// An Engine keeps one partition per category. Each partition holds the
// in-memory view of its entries and the store they are persisted to; every
// mutation updates both under the partition's lock before returning.
// Storage failures are logged and swallowed so that a broken disk only
// turns into more misses.
package cache

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pario-ai/findcache/pkg/fingerprint"
	"github.com/pario-ai/findcache/pkg/models"
	"github.com/pario-ai/findcache/pkg/store"
)

var (
	// ErrUnknownCategory is returned for a category outside models.Categories.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidPayload is returned by Insert for payloads missing required
	// fields or filed under the wrong category.
	ErrInvalidPayload = errors.New("invalid payload")
)

type partition struct {
	mu      sync.Mutex
	entries map[string]*models.Entry
	store   store.Store
}

// Engine is the analysis result cache.
type Engine struct {
	backend store.Backend
	parts   map[models.Category]*partition

	ttl             time.Duration
	minAnchor       int
	janitorInterval time.Duration
	logger          *zap.Logger
	metrics         *Metrics
	now             func() time.Time
	validate        *validator.Validate

	stats counters

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Open loads every category from backend, evicts what has expired and
// returns a ready engine. The engine owns backend and closes it in Close;
// if Open fails the backend is left open for the caller.
func Open(ctx context.Context, backend store.Backend, opts ...Option) (*Engine, error) {
	e := &Engine{
		backend:   backend,
		parts:     make(map[models.Category]*partition, len(models.Categories())),
		ttl:       DefaultTTL,
		minAnchor: 1,
		logger:    zap.NewNop(),
		now:       time.Now,
		validate:  validator.New(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, c := range models.Categories() {
		s, err := backend.Store(c)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", c, err)
		}
		e.parts[c] = &partition{entries: make(map[string]*models.Entry), store: s}
	}

	g, gctx := errgroup.WithContext(ctx)
	for c, p := range e.parts {
		c, p := c, p
		g.Go(func() error {
			entries, err := p.store.LoadAll(gctx)
			if err != nil {
				return fmt.Errorf("load %s entries: %w", c, err)
			}
			p.mu.Lock()
			defer p.mu.Unlock()
			for i := range entries {
				p.entries[entries[i].ID] = &entries[i]
			}
			e.metrics.size(string(c), len(p.entries))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	evicted := e.EvictExpired(ctx, e.ttl)
	e.logger.Info("cache opened",
		zap.Int("entries", e.size()),
		zap.Int("evicted", evicted),
		zap.Duration("ttl", e.ttl),
	)

	if e.janitorInterval > 0 && e.ttl > 0 {
		e.wg.Add(1)
		go e.janitor(e.janitorInterval)
	}
	return e, nil
}

// Close stops the janitor and closes the backend.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		close(e.done)
		e.wg.Wait()
		err = e.backend.Close()
	})
	return err
}

func (e *Engine) partition(c models.Category) (*partition, error) {
	p, ok := e.parts[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return p, nil
}

func (e *Engine) expired(en *models.Entry, now time.Time) bool {
	return e.ttl > 0 && en.LastUsedAt.Before(now.Add(-e.ttl))
}

func (e *Engine) matches(en *models.Entry, key, source string) bool {
	if en.ContentHash == key {
		return true
	}
	a := en.AnchorPattern
	return a != "" && len(a) >= e.minAnchor && strings.Contains(source, a)
}

// Find returns the cached findings that apply to source, either because
// the normalized source is unchanged or because an entry's anchor snippet
// still occurs in it. Returned payloads are marked as cache-sourced and
// ordered by id.
func (e *Engine) Find(ctx context.Context, c models.Category, source string) ([]models.Payload, []string, error) {
	p, err := e.partition(c)
	if err != nil {
		return nil, nil, err
	}
	key := fingerprint.SimilarityFingerprint(source)

	p.mu.Lock()
	now := e.now()
	var hits []*models.Entry
	for _, en := range p.entries {
		if e.expired(en, now) || !e.matches(en, key, source) {
			continue
		}
		hits = append(hits, en)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].ID < hits[j].ID })

	payloads := make([]models.Payload, 0, len(hits))
	ids := make([]string, 0, len(hits))
	for _, en := range hits {
		en.LastUsedAt = now
		en.UseCount++
		if err := p.store.Save(ctx, *en); err != nil {
			e.logger.Warn("persist cache hit", zap.String("id", en.ID), zap.Error(err))
		}
		payloads = append(payloads, en.Payload.Cached())
		ids = append(ids, en.ID)
		e.logger.Debug("cache hit",
			zap.String("category", string(c)),
			zap.String("id", en.ID),
			zap.Int64("use_count", en.UseCount),
		)
	}
	p.mu.Unlock()

	e.stats.recordLookup(c, ids)
	e.metrics.lookup(string(c), len(ids) > 0)
	return payloads, ids, nil
}

// EntryID is the id a payload is stored under: the category prefix and
// the fingerprint of the payload's semantic key.
func EntryID(p models.Payload) string {
	return p.Category().IDPrefix() + "_" + fingerprint.Fingerprint(p.SemanticKey())
}

// Insert stores a fresh finding for source and returns its id. Inserting
// a finding that is already cached returns the existing id unchanged.
func (e *Engine) Insert(ctx context.Context, c models.Category, payload models.Payload, source string) (string, error) {
	p, err := e.partition(c)
	if err != nil {
		return "", err
	}
	if err := e.check(c, payload); err != nil {
		return "", err
	}
	payload = payload.Clone()
	id := EntryID(payload)

	p.mu.Lock()
	defer p.mu.Unlock()

	now := e.now()
	if en, ok := p.entries[id]; ok && !e.expired(en, now) {
		return id, nil
	}

	if source == "" {
		if rj, ok := payload.(models.RequirementJudgment); ok {
			source = rj.Requirement
		}
	}
	en := &models.Entry{
		ID:            id,
		Category:      c,
		ContentHash:   fingerprint.SimilarityFingerprint(source),
		AnchorPattern: payload.Anchor(),
		Payload:       payload,
		CreatedAt:     now,
		LastUsedAt:    now,
		UseCount:      1,
		Tags:          models.TagSet(payload),
	}
	if err := p.store.Save(ctx, *en); err != nil {
		e.logger.Warn("persist new cache entry", zap.String("id", id), zap.Error(err))
	}
	p.entries[id] = en

	e.stats.recordSave()
	e.metrics.save(string(c))
	e.metrics.size(string(c), len(p.entries))
	return id, nil
}

func (e *Engine) check(c models.Category, payload models.Payload) error {
	if payload == nil {
		return fmt.Errorf("%w: nil payload", ErrInvalidPayload)
	}
	if v := reflect.ValueOf(payload); v.Kind() == reflect.Pointer && v.IsNil() {
		return fmt.Errorf("%w: nil %T payload", ErrInvalidPayload, payload)
	}
	if payload.Category() != c {
		return fmt.Errorf("%w: %s payload for %s cache", ErrInvalidPayload, payload.Category(), c)
	}
	if err := e.validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// EvictExpired removes every entry unused for longer than ttl and returns
// how many were removed. A non-positive ttl removes nothing.
func (e *Engine) EvictExpired(ctx context.Context, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	total := 0
	for _, c := range models.Categories() {
		p := e.parts[c]
		p.mu.Lock()
		cutoff := e.now().Add(-ttl)
		n := 0
		for id, en := range p.entries {
			if !en.LastUsedAt.Before(cutoff) {
				continue
			}
			delete(p.entries, id)
			n++
			if err := p.store.Delete(ctx, id); err != nil {
				e.logger.Warn("delete expired cache entry", zap.String("id", id), zap.Error(err))
			}
		}
		e.metrics.evicted(string(c), n)
		e.metrics.size(string(c), len(p.entries))
		p.mu.Unlock()

		if n > 0 {
			e.logger.Info("evicted expired cache entries",
				zap.String("category", string(c)), zap.Int("count", n))
		}
		total += n
	}
	return total
}

// Statistics returns a snapshot of the usage counters and entry counts.
func (e *Engine) Statistics() models.CacheStats {
	s := e.stats.snapshot()
	s.Entries = make(map[models.Category]int, len(e.parts))
	for c, p := range e.parts {
		p.mu.Lock()
		s.Entries[c] = len(p.entries)
		p.mu.Unlock()
	}
	Summarize(&s)
	return s
}

// ResetStatistics zeroes the usage counters.
func (e *Engine) ResetStatistics() {
	e.stats.reset()
	e.logger.Info("cache statistics reset")
}

// Clear removes every entry from memory and storage and resets the
// statistics. Storage errors are logged and returned joined.
func (e *Engine) Clear(ctx context.Context) error {
	var errs []error
	for _, c := range models.Categories() {
		p := e.parts[c]
		p.mu.Lock()
		clear(p.entries)
		if err := p.store.Clear(ctx); err != nil {
			e.logger.Warn("clear cache store", zap.String("category", string(c)), zap.Error(err))
			errs = append(errs, err)
		}
		e.metrics.size(string(c), 0)
		p.mu.Unlock()
	}
	e.stats.reset()
	e.logger.Info("cache cleared")
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func (e *Engine) size() int {
	n := 0
	for _, p := range e.parts {
		p.mu.Lock()
		n += len(p.entries)
		p.mu.Unlock()
	}
	return n
}
