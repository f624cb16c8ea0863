package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "run-1", "report.md", []byte("# Report")))

	data, err := store.Get(ctx, "run-1", "report.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("# Report"), data)

	// Overwrite replaces content.
	require.NoError(t, store.Save(ctx, "run-1", "report.md", []byte("v2")))
	data, err = store.Get(ctx, "run-1", "report.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestFileStoreNotFound(t *testing.T) {
	ctx := context.Background()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(ctx, "run-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreListAndDelete(t *testing.T) {
	ctx := context.Background()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "run-1", "b.txt", []byte("b")))
	require.NoError(t, store.Save(ctx, "run-1", "a.txt", []byte("a")))

	ids, err := store.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, ids)

	require.NoError(t, store.Delete(ctx, "run-1", "a.txt"))
	require.NoError(t, store.Delete(ctx, "run-1", "a.txt"))

	ids, err = store.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, ids)

	// Unknown scope lists empty.
	ids, err = store.List(ctx, "run-9")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Save(ctx, "run-1", "../escape", []byte("x")))
	assert.Error(t, store.Save(ctx, "../run", "a.txt", []byte("x")))
	assert.Error(t, store.Save(ctx, "run-1", "nested/path", []byte("x")))
	assert.Error(t, store.Save(ctx, "run-1", "", []byte("x")))

	_, err = store.Get(ctx, "run-1", "..")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
