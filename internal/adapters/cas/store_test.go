package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/cas"
	"go.trai.ch/forge/internal/core/domain"
)

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore()

	rec := domain.StepRecord{
		Key:       "sass/compile/0123456789abcdef",
		Task:      "sass",
		Step:      "compile",
		Outputs:   []string{"dist/css/main.css"},
		Timestamp: time.Now().Truncate(time.Second),
	}

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, store.Put(root, rec))

		got, err := store.Get(root, rec.Key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec.Key, got.Key)
		assert.Equal(t, rec.Outputs, got.Outputs)
		assert.True(t, rec.Timestamp.Equal(got.Timestamp))
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		got, err := store.Get(root, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_GetCorrupt(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore()
	require.NoError(t, store.Put(root, domain.StepRecord{Key: "k"}))

	dir := filepath.Join(root, domain.DefaultStorePath())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{invalid"), domain.FilePerm))

	_, err = store.Get(root, "k")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore()
	require.NoError(t, store.Put(root, domain.StepRecord{Key: "a"}))
	require.NoError(t, store.Put(root, domain.StepRecord{Key: "b"}))

	require.NoError(t, store.Clear(root))

	got, err := store.Get(root, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoDirExists(t, filepath.Join(root, domain.DefaultStorePath()))

	// Clearing an empty cache is fine.
	require.NoError(t, store.Clear(root))
}
