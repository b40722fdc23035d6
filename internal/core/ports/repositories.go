package ports

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/quorumfed/aggregator/internal/core/models"
	"github.com/quorumfed/aggregator/internal/storage"
)

// TrainerRegistry owns the trainer weight records.
type TrainerRegistry interface {
	// Register is idempotent. Adding a new trainer rewrites every weight
	// to 1/n before inserting the newcomer, so the weights keep summing
	// to one.
	Register(address common.Address) error
	WeightOf(address common.Address) (float64, error)
	Count() (int, error)
	All() ([]models.Trainer, error)
}

// PendingPool buffers the current round's submitted deltas, one per
// trainer at most.
type PendingPool interface {
	Contains(address common.Address) (bool, error)
	Add(address common.Address, delta []float32) error
	All() ([]models.PendingUpdate, error)
	Count() (int, error)
	// ClearInto stages the removal of every pending entry on the given
	// batch so it commits atomically with the new model version.
	ClearInto(b storage.Batch) error
}

// ModelStore is the append-only versioned model history plus the latest
// pointer.
type ModelStore interface {
	// Latest dereferences the latest pointer, creating the genesis model
	// first if the store has never been touched.
	Latest() (*models.Model, error)
	ByVersion(version uint32) (*models.Model, bool, error)
	PutInto(b storage.Batch, m *models.Model)
	SetLatestInto(b storage.Batch, m *models.Model)
}
