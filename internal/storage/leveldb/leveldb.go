// Package leveldb backs the storage engine with goleveldb. Collections
// share one database and are separated by a "name:" key prefix.
package leveldb

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/quorumfed/aggregator/internal/storage"
)

type Store struct {
	db *leveldb.DB
}

func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Collection(name string) storage.Collection {
	return &collection{db: s.db, prefix: prefix(name)}
}

func (s *Store) Batch() storage.Batch {
	return &batch{db: s.db, inner: new(leveldb.Batch)}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func prefix(name string) []byte {
	return append([]byte(name), ':')
}

func prefixed(p, key []byte) []byte {
	out := make([]byte, 0, len(p)+len(key))
	out = append(out, p...)
	return append(out, key...)
}

type collection struct {
	db     *leveldb.DB
	prefix []byte
}

func (c *collection) Get(key []byte) ([]byte, bool, error) {
	value, err := c.db.Get(prefixed(c.prefix, key), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *collection) Put(key, value []byte) error {
	return c.db.Put(prefixed(c.prefix, key), value, nil)
}

func (c *collection) Has(key []byte) (bool, error) {
	return c.db.Has(prefixed(c.prefix, key), nil)
}

func (c *collection) Iterate(fn func(key, value []byte) error) error {
	iter := c.db.NewIterator(util.BytesPrefix(c.prefix), nil)
	defer iter.Release()

	for iter.Next() {
		key := append([]byte(nil), iter.Key()[len(c.prefix):]...)
		value := append([]byte(nil), iter.Value()...)
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (c *collection) Count() (int, error) {
	iter := c.db.NewIterator(util.BytesPrefix(c.prefix), nil)
	defer iter.Release()

	count := 0
	for iter.Next() {
		count++
	}
	return count, iter.Error()
}

func (c *collection) Clear() error {
	iter := c.db.NewIterator(util.BytesPrefix(c.prefix), nil)
	defer iter.Release()

	b := new(leveldb.Batch)
	for iter.Next() {
		b.Delete(append([]byte(nil), iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		return err
	}
	return c.db.Write(b, nil)
}

type batch struct {
	db    *leveldb.DB
	inner *leveldb.Batch
}

func (b *batch) Put(collection string, key, value []byte) {
	b.inner.Put(prefixed(prefix(collection), key), value)
}

func (b *batch) Delete(collection string, key []byte) {
	b.inner.Delete(prefixed(prefix(collection), key))
}

func (b *batch) Commit() error {
	return b.db.Write(b.inner, nil)
}
