package models

import "github.com/ethereum/go-ethereum/common"

// Trainer is a registered participant. Weights are uniform across the
// registry and are rewritten for everyone whenever a new trainer joins, so
// they always sum to one.
type Trainer struct {
	Address common.Address `json:"address"`
	Weight  float64        `json:"weight"`
}

// PendingUpdate is one trainer's delta buffered for the current round.
type PendingUpdate struct {
	Trainer common.Address
	Delta   []float32
}
