package leveldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return store
}

func TestPutGetHas(t *testing.T) {
	store := openTestStore(t)
	col := store.Collection("scores")

	require.NoError(t, col.Put([]byte("k"), []byte("v")))

	value, ok, err := col.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	ok, err = col.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = col.Get([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrefixesDoNotLeakAcrossCollections(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Collection("a").Put([]byte("k"), []byte("va")))
	require.NoError(t, store.Collection("ab").Put([]byte("k"), []byte("vab")))

	count, err := store.Collection("a").Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var keys []string
	err = store.Collection("ab").Iterate(func(key, _ []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)
}

func TestBatchCommitsAtomically(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Collection("a").Put([]byte("old"), []byte("x")))

	batch := store.Batch()
	batch.Put("a", []byte("new"), []byte("y"))
	batch.Delete("a", []byte("old"))
	require.NoError(t, batch.Commit())

	ok, err := store.Collection("a").Has([]byte("old"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Collection("a").Has([]byte("new"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	col := store.Collection("pending")

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, col.Put([]byte(key), []byte(key)))
	}
	require.NoError(t, col.Clear())

	count, err := col.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
