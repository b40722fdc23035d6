package services

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/quorumfed/aggregator/internal/core/logging"
	"github.com/quorumfed/aggregator/internal/core/models"
	"github.com/quorumfed/aggregator/internal/core/ports"
)

// LogObserver traces round lifecycle events through the structured logger.
type LogObserver struct{}

func NewLogObserver() *LogObserver {
	return &LogObserver{}
}

func (o *LogObserver) TrainerRegistered(address common.Address, total int, weight float64) {
	log := logging.WithComponent("round_observer")
	log.Info().
		Str("address", address.Hex()).
		Int("trainer_count", total).
		Float64("uniform_weight", weight).
		Msg("Trainer registered")
}

func (o *LogObserver) UpdateSubmitted(address common.Address, outcome models.SubmitOutcome, ratio float64) {
	log := logging.WithComponent("round_observer")
	log.Info().
		Str("address", address.Hex()).
		Str("outcome", string(outcome)).
		Float64("ratio", ratio).
		Msg("Update submitted")
}

func (o *LogObserver) RoundCommitted(model *models.Model, contributors int) {
	log := logging.WithComponent("round_observer")
	log.Info().
		Uint32("version", model.Version).
		Int("contributors", contributors).
		Msg("Round committed")
}

// Observers fans lifecycle events out to every registered observer.
type Observers []ports.RoundObserver

func (os Observers) TrainerRegistered(address common.Address, total int, weight float64) {
	for _, o := range os {
		o.TrainerRegistered(address, total, weight)
	}
}

func (os Observers) UpdateSubmitted(address common.Address, outcome models.SubmitOutcome, ratio float64) {
	for _, o := range os {
		o.UpdateSubmitted(address, outcome, ratio)
	}
}

func (os Observers) RoundCommitted(model *models.Model, contributors int) {
	for _, o := range os {
		o.RoundCommitted(model, contributors)
	}
}
