// Package postgres backs the storage engine with a single keyed records
// table managed by gorm. Batches run inside one database transaction.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quorumfed/aggregator/internal/storage"
)

type Record struct {
	Collection string `gorm:"primaryKey;size:64"`
	Key        []byte `gorm:"primaryKey"`
	Value      []byte
}

type Store struct {
	db *gorm.DB
}

func Open(dbURL string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("error migrating database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Collection(name string) storage.Collection {
	return &collection{db: s.db, name: name}
}

func (s *Store) Batch() storage.Batch {
	return &batch{db: s.db}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type collection struct {
	db   *gorm.DB
	name string
}

func (c *collection) Get(key []byte) ([]byte, bool, error) {
	var record Record
	err := c.db.Where("collection = ? AND key = ?", c.name, key).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return record.Value, true, nil
}

func (c *collection) Put(key, value []byte) error {
	record := Record{Collection: c.name, Key: key, Value: value}
	return c.db.Save(&record).Error
}

func (c *collection) Has(key []byte) (bool, error) {
	var count int64
	err := c.db.Model(&Record{}).
		Where("collection = ? AND key = ?", c.name, key).
		Count(&count).Error
	return count > 0, err
}

func (c *collection) Iterate(fn func(key, value []byte) error) error {
	var records []Record
	if err := c.db.Where("collection = ?", c.name).Order("key ASC").Find(&records).Error; err != nil {
		return err
	}
	for _, record := range records {
		if err := fn(record.Key, record.Value); err != nil {
			return err
		}
	}
	return nil
}

func (c *collection) Count() (int, error) {
	var count int64
	err := c.db.Model(&Record{}).Where("collection = ?", c.name).Count(&count).Error
	return int(count), err
}

func (c *collection) Clear() error {
	return c.db.Where("collection = ?", c.name).Delete(&Record{}).Error
}

type batchOp struct {
	record Record
	delete bool
}

type batch struct {
	db  *gorm.DB
	ops []batchOp
}

func (b *batch) Put(collection string, key, value []byte) {
	b.ops = append(b.ops, batchOp{
		record: Record{Collection: collection, Key: key, Value: value},
	})
}

func (b *batch) Delete(collection string, key []byte) {
	b.ops = append(b.ops, batchOp{
		record: Record{Collection: collection, Key: key},
		delete: true,
	})
}

func (b *batch) Commit() error {
	err := b.db.Transaction(func(tx *gorm.DB) error {
		for _, op := range b.ops {
			if op.delete {
				if err := tx.Where("collection = ? AND key = ?", op.record.Collection, op.record.Key).
					Delete(&Record{}).Error; err != nil {
					return err
				}
				continue
			}
			record := op.record
			if err := tx.Save(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.ops = nil
	return nil
}
