package badger

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/findcache/pkg/models"
	"github.com/pario-ai/findcache/pkg/store"
	"github.com/pario-ai/findcache/pkg/store/storetest"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		return newTestBackend(t)
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestPersistentReopen(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	s, err := b.Store(models.CategoryDefect)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), storetest.Entry("bug_1")))
	require.NoError(t, b.Close())

	b, err = Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer b.Close()
	s, err = b.Store(models.CategoryDefect)
	require.NoError(t, err)
	got, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bug_1", got[0].ID)
}

func TestCorruptValueSkipped(t *testing.T) {
	b := newTestBackend(t)
	s, err := b.Store(models.CategoryDefect)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, storetest.Entry("bug_ok")))
	require.NoError(t, b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("defect/bug_bad"), []byte("garbage"))
	}))

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bug_ok", got[0].ID)
}
