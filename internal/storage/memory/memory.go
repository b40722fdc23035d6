// Package memory provides a map-backed storage engine for tests and
// ephemeral deployments.
package memory

import (
	"sort"
	"sync"

	"github.com/quorumfed/aggregator/internal/storage"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string][]byte),
	}
}

func (s *Store) Collection(name string) storage.Collection {
	return &collection{store: s, name: name}
}

func (s *Store) Batch() storage.Batch {
	return &batch{store: s}
}

func (s *Store) Close() error {
	return nil
}

// data returns the backing map for a collection. Callers hold s.mu for
// writing; missing collections are created here.
func (s *Store) data(name string) map[string][]byte {
	m, ok := s.collections[name]
	if !ok {
		m = make(map[string][]byte)
		s.collections[name] = m
	}
	return m
}

// view returns the backing map for reading, or nil if the collection was
// never written. Callers hold s.mu for reading; nil keeps read paths from
// mutating the collection table.
func (s *Store) view(name string) map[string][]byte {
	return s.collections[name]
}

type collection struct {
	store *Store
	name  string
}

func (c *collection) Get(key []byte) ([]byte, bool, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	value, ok := c.store.view(c.name)[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (c *collection) Put(key, value []byte) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	c.store.data(c.name)[string(key)] = append([]byte(nil), value...)
	return nil
}

func (c *collection) Has(key []byte) (bool, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	_, ok := c.store.view(c.name)[string(key)]
	return ok, nil
}

func (c *collection) Iterate(fn func(key, value []byte) error) error {
	c.store.mu.RLock()
	data := c.store.view(c.name)
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([][2][]byte, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, [2][]byte{[]byte(k), append([]byte(nil), data[k]...)})
	}
	c.store.mu.RUnlock()

	for _, e := range entries {
		if err := fn(e[0], e[1]); err != nil {
			return err
		}
	}
	return nil
}

func (c *collection) Count() (int, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	return len(c.store.view(c.name)), nil
}

func (c *collection) Clear() error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	delete(c.store.collections, c.name)
	return nil
}

type batchOp struct {
	collection string
	key        []byte
	value      []byte
	delete     bool
}

type batch struct {
	store *Store
	ops   []batchOp
}

func (b *batch) Put(collection string, key, value []byte) {
	b.ops = append(b.ops, batchOp{
		collection: collection,
		key:        append([]byte(nil), key...),
		value:      append([]byte(nil), value...),
	})
}

func (b *batch) Delete(collection string, key []byte) {
	b.ops = append(b.ops, batchOp{
		collection: collection,
		key:        append([]byte(nil), key...),
		delete:     true,
	})
}

func (b *batch) Commit() error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	for _, op := range b.ops {
		data := b.store.data(op.collection)
		if op.delete {
			delete(data, string(op.key))
		} else {
			data[string(op.key)] = op.value
		}
	}
	b.ops = nil
	return nil
}
