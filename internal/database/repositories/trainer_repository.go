package repositories

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quorumfed/aggregator/internal/core/models"
	"github.com/quorumfed/aggregator/internal/core/ports"
	"github.com/quorumfed/aggregator/internal/storage"
)

const trainerCollection = "trainer_scores"

// TrainerRepository persists trainer weights as base-10 decimal text keyed
// by address.
type TrainerRepository struct {
	store storage.Store
}

func NewTrainerRepository(store storage.Store) ports.TrainerRegistry {
	return &TrainerRepository{
		store: store,
	}
}

func (r *TrainerRepository) Register(address common.Address) error {
	col := r.store.Collection(trainerCollection)

	registered, err := col.Has(address.Bytes())
	if err != nil {
		return fmt.Errorf("failed to check trainer registration: %w", err)
	}
	if registered {
		return nil
	}

	var existing [][]byte
	err = col.Iterate(func(key, _ []byte) error {
		existing = append(existing, append([]byte(nil), key...))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list registered trainers: %w", err)
	}

	// Every trainer, old and new, moves to the uniform weight 1/n in the
	// same atomic write.
	weight := 1.0 / float64(len(existing)+1)
	encoded := []byte(strconv.FormatFloat(weight, 'g', -1, 64))

	batch := r.store.Batch()
	for _, key := range existing {
		batch.Put(trainerCollection, key, encoded)
	}
	batch.Put(trainerCollection, address.Bytes(), encoded)

	if err := batch.Commit(); err != nil {
		return fmt.Errorf("failed to register trainer: %w", err)
	}
	return nil
}

func (r *TrainerRepository) WeightOf(address common.Address) (float64, error) {
	raw, ok, err := r.store.Collection(trainerCollection).Get(address.Bytes())
	if err != nil {
		return 0, fmt.Errorf("failed to read trainer weight: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", models.ErrUnknownTrainer, address.Hex())
	}

	weight, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse weight record for %s: %w", address.Hex(), err)
	}
	return weight, nil
}

func (r *TrainerRepository) Count() (int, error) {
	return r.store.Collection(trainerCollection).Count()
}

func (r *TrainerRepository) All() ([]models.Trainer, error) {
	var trainers []models.Trainer
	err := r.store.Collection(trainerCollection).Iterate(func(key, value []byte) error {
		weight, err := strconv.ParseFloat(string(value), 64)
		if err != nil {
			return fmt.Errorf("failed to parse weight record: %w", err)
		}
		trainers = append(trainers, models.Trainer{
			Address: common.BytesToAddress(key),
			Weight:  weight,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trainers, nil
}
