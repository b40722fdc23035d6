package repositories

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quorumfed/aggregator/internal/core/models"
	"github.com/quorumfed/aggregator/internal/core/ports"
	"github.com/quorumfed/aggregator/internal/storage"
	"github.com/quorumfed/aggregator/internal/utils"
)

const pendingCollection = "pending_updates"

// PendingRepository buffers the current round's deltas as raw float32
// buffers keyed by trainer address. Entries are only ever inserted or
// cleared in bulk, never overwritten.
type PendingRepository struct {
	store     storage.Store
	modelSize uint32
}

func NewPendingRepository(store storage.Store, modelSize uint32) ports.PendingPool {
	return &PendingRepository{
		store:     store,
		modelSize: modelSize,
	}
}

func (r *PendingRepository) Contains(address common.Address) (bool, error) {
	return r.store.Collection(pendingCollection).Has(address.Bytes())
}

func (r *PendingRepository) Add(address common.Address, delta []float32) error {
	if err := r.store.Collection(pendingCollection).Put(address.Bytes(), utils.EncodeFloat32s(delta)); err != nil {
		return fmt.Errorf("failed to buffer pending update: %w", err)
	}
	return nil
}

func (r *PendingRepository) All() ([]models.PendingUpdate, error) {
	var updates []models.PendingUpdate
	err := r.store.Collection(pendingCollection).Iterate(func(key, value []byte) error {
		delta, err := utils.DecodeFloat32s(value, r.modelSize)
		if err != nil {
			return fmt.Errorf("%w: pending record for %s: %v",
				models.ErrSerialization, common.BytesToAddress(key).Hex(), err)
		}
		updates = append(updates, models.PendingUpdate{
			Trainer: common.BytesToAddress(key),
			Delta:   delta,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *PendingRepository) Count() (int, error) {
	return r.store.Collection(pendingCollection).Count()
}

func (r *PendingRepository) ClearInto(b storage.Batch) error {
	return r.store.Collection(pendingCollection).Iterate(func(key, _ []byte) error {
		b.Delete(pendingCollection, key)
		return nil
	})
}
