// Package storage defines the keyed collection engine the aggregation
// schema is built on. Keys within a collection are opaque byte strings;
// iteration visits entries in ascending key order. A Batch groups writes
// across collections into a single atomic commit.
package storage

type Store interface {
	Collection(name string) Collection
	Batch() Batch
	Close() error
}

type Collection interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key, value []byte) error
	Has(key []byte) (bool, error)
	Iterate(fn func(key, value []byte) error) error
	Count() (int, error)
	Clear() error
}

type Batch interface {
	Put(collection string, key, value []byte)
	Delete(collection string, key []byte)
	Commit() error
}
