// Package storetest holds the behaviour every store.Backend must share.
package storetest

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/findcache/pkg/models"
	"github.com/pario-ai/findcache/pkg/store"
)

// Entry builds a defect entry with the given id.
func Entry(id string) models.Entry {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := models.Defect{
		Description: "nil dereference " + id,
		CodeSnippet: "x.y()",
		Severity:    "high",
		Fix:         "check x for nil",
	}
	return models.Entry{
		ID:            id,
		Category:      models.CategoryDefect,
		ContentHash:   "hash-" + id,
		AnchorPattern: p.CodeSnippet,
		Payload:       p,
		CreatedAt:     now,
		LastUsedAt:    now,
		UseCount:      1,
		Tags:          models.TagSet(p),
	}
}

// Run exercises a fresh backend returned by open.
func Run(t *testing.T, open func(t *testing.T) store.Backend) {
	t.Run("SaveLoad", func(t *testing.T) {
		b := open(t)
		s, err := b.Store(models.CategoryDefect)
		require.NoError(t, err)
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, Entry("bug_1")))
		require.NoError(t, s.Save(ctx, Entry("bug_2")))

		got, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		sort.Slice(got, func(i, j int) bool { return got[i].ID < got[j].ID })

		want := Entry("bug_1")
		assert.Equal(t, want.ID, got[0].ID)
		assert.Equal(t, want.ContentHash, got[0].ContentHash)
		assert.Equal(t, want.Payload, got[0].Payload)
		assert.True(t, want.LastUsedAt.Equal(got[0].LastUsedAt))
		assert.Equal(t, want.Tags, got[0].Tags)
	})

	t.Run("SaveIsUpsert", func(t *testing.T) {
		b := open(t)
		s, err := b.Store(models.CategoryDefect)
		require.NoError(t, err)
		ctx := context.Background()

		e := Entry("bug_1")
		require.NoError(t, s.Save(ctx, e))
		e.UseCount = 7
		require.NoError(t, s.Save(ctx, e))

		got, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.EqualValues(t, 7, got[0].UseCount)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		b := open(t)
		s, err := b.Store(models.CategoryDefect)
		require.NoError(t, err)
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, Entry("bug_1")))
		require.NoError(t, s.Delete(ctx, "bug_1"))
		require.NoError(t, s.Delete(ctx, "bug_1"))
		require.NoError(t, s.Delete(ctx, "bug_never"))

		got, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("CategoriesAreIsolated", func(t *testing.T) {
		b := open(t)
		ctx := context.Background()
		defects, err := b.Store(models.CategoryDefect)
		require.NoError(t, err)
		recs, err := b.Store(models.CategoryRecommendation)
		require.NoError(t, err)

		require.NoError(t, defects.Save(ctx, Entry("bug_1")))

		rec := models.Recommendation{Description: "use a constant", CodeSnippet: "42"}
		re := Entry("rec_1")
		re.Category = models.CategoryRecommendation
		re.Payload = rec
		require.NoError(t, recs.Save(ctx, re))

		got, err := recs.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rec, got[0].Payload)

		require.NoError(t, recs.Clear(ctx))
		got, err = recs.LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = defects.LoadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 1, "clearing one category must not touch another")
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		b := open(t)
		_, err := b.Store(models.Category("nope"))
		assert.Error(t, err)
	})
}
