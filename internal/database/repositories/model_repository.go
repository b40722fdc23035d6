package repositories

import (
	"fmt"

	"github.com/quorumfed/aggregator/internal/core/models"
	"github.com/quorumfed/aggregator/internal/core/ports"
	"github.com/quorumfed/aggregator/internal/storage"
	"github.com/quorumfed/aggregator/internal/utils"
)

const (
	modelCollection  = "models"
	latestCollection = "latest"
)

// The latest pointer is a single record.
var latestKey = []byte("model")

// ModelRepository is the append-only versioned model store. Models are
// keyed by the hash derived from their version; the latest pointer holds
// the key of the current one.
type ModelRepository struct {
	store      storage.Store
	modelSize  uint32
	initWeight float32
}

func NewModelRepository(store storage.Store, modelSize uint32, initWeight float32) ports.ModelStore {
	return &ModelRepository{
		store:      store,
		modelSize:  modelSize,
		initWeight: initWeight,
	}
}

func (r *ModelRepository) Latest() (*models.Model, error) {
	pointer, ok, err := r.store.Collection(latestCollection).Get(latestKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest pointer: %w", err)
	}
	if !ok {
		return r.createGenesis()
	}

	raw, ok, err := r.store.Collection(modelCollection).Get(pointer)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest model: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: latest pointer %x has no model record", models.ErrStoreCorruption, pointer)
	}
	return models.DecodeModel(raw)
}

func (r *ModelRepository) createGenesis() (*models.Model, error) {
	genesis := models.NewGenesisModel(r.modelSize, r.initWeight)
	key := utils.ModelKey(genesis.Version)

	batch := r.store.Batch()
	batch.Put(modelCollection, key.Bytes(), genesis.Encode())
	batch.Put(latestCollection, latestKey, key.Bytes())

	if err := batch.Commit(); err != nil {
		return nil, fmt.Errorf("failed to store genesis model: %w", err)
	}
	return genesis, nil
}

func (r *ModelRepository) ByVersion(version uint32) (*models.Model, bool, error) {
	raw, ok, err := r.store.Collection(modelCollection).Get(utils.ModelKey(version).Bytes())
	if err != nil {
		return nil, false, fmt.Errorf("failed to read model v%d: %w", version, err)
	}
	if !ok {
		return nil, false, nil
	}
	model, err := models.DecodeModel(raw)
	if err != nil {
		return nil, false, err
	}
	return model, true, nil
}

func (r *ModelRepository) PutInto(b storage.Batch, m *models.Model) {
	b.Put(modelCollection, utils.ModelKey(m.Version).Bytes(), m.Encode())
}

func (r *ModelRepository) SetLatestInto(b storage.Batch, m *models.Model) {
	b.Put(latestCollection, latestKey, utils.ModelKey(m.Version).Bytes())
}
