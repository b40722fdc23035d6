package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionsAreIsolated(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.Collection("a").Put([]byte("k"), []byte("va")))
	require.NoError(t, store.Collection("b").Put([]byte("k"), []byte("vb")))

	value, ok, err := store.Collection("a").Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("va"), value)

	require.NoError(t, store.Collection("a").Clear())

	_, ok, err = store.Collection("a").Get([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)

	value, ok, err = store.Collection("b").Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("vb"), value)
}

func TestIterateVisitsKeysInOrder(t *testing.T) {
	store := NewStore()
	col := store.Collection("ordered")

	for _, key := range []string{"c", "a", "b"} {
		require.NoError(t, col.Put([]byte(key), []byte(key)))
	}

	var visited []string
	err := col.Iterate(func(key, _ []byte) error {
		visited = append(visited, string(key))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, visited)

	count, err := col.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestBatchAppliesAllOps(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Collection("a").Put([]byte("stale"), []byte("x")))

	batch := store.Batch()
	batch.Put("a", []byte("k1"), []byte("v1"))
	batch.Put("b", []byte("k2"), []byte("v2"))
	batch.Delete("a", []byte("stale"))
	require.NoError(t, batch.Commit())

	_, ok, err := store.Collection("a").Get([]byte("stale"))
	require.NoError(t, err)
	assert.False(t, ok)

	value, ok, err := store.Collection("a").Get([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), value)

	value, ok, err = store.Collection("b").Get([]byte("k2"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), value)
}

// Concurrent reads on collections that were never written must not
// mutate the collection table. Run with -race.
func TestConcurrentReadsOnFreshCollections(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			col := store.Collection(fmt.Sprintf("fresh-%d", i%2))
			for j := 0; j < 100; j++ {
				_, err := col.Has([]byte("k"))
				require.NoError(t, err)

				_, ok, err := col.Get([]byte("k"))
				require.NoError(t, err)
				require.False(t, ok)

				count, err := col.Count()
				require.NoError(t, err)
				require.Zero(t, count)

				require.NoError(t, col.Iterate(func(_, _ []byte) error { return nil }))
			}
		}(i)
	}
	wg.Wait()
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore()
	col := store.Collection("c")

	require.NoError(t, col.Put([]byte("k"), []byte("abc")))

	value, ok, err := col.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)

	value[0] = 'z'

	again, _, err := col.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}
