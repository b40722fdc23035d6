package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quorumfed/aggregator/internal/core/models"
)

// Aggregator is the round-affecting surface exposed to the API layer.
type Aggregator interface {
	RegisterTrainer(ctx context.Context, address common.Address) error
	SubmitUpdate(ctx context.Context, address common.Address, payload []byte) (models.SubmitOutcome, float64, error)
	Commit(ctx context.Context) (*models.Model, error)
	RoundState(ctx context.Context) (models.RoundState, error)
	LatestModel(ctx context.Context) (*models.Model, error)
	ModelByVersion(ctx context.Context, version uint32) (*models.Model, bool, error)
	Trainers(ctx context.Context) ([]models.Trainer, error)
}

// RoundObserver receives round lifecycle notifications. It replaces
// ad-hoc debug tracing with an injected collaborator.
type RoundObserver interface {
	TrainerRegistered(address common.Address, total int, weight float64)
	UpdateSubmitted(address common.Address, outcome models.SubmitOutcome, ratio float64)
	RoundCommitted(model *models.Model, contributors int)
}
