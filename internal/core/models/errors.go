package models

import "errors"

var (
	// ErrUnknownTrainer is returned for any operation naming an address
	// that was never registered.
	ErrUnknownTrainer = errors.New("unknown trainer")

	// ErrSerialization is returned when a submitted delta does not decode
	// to exactly the configured vector length.
	ErrSerialization = errors.New("malformed weight update")

	// ErrInconsistentTrainerState aborts a commit when a pending entry's
	// weight lookup fails mid-aggregation.
	ErrInconsistentTrainerState = errors.New("inconsistent trainer state")

	// ErrStoreCorruption is returned when the latest pointer references a
	// model that does not exist.
	ErrStoreCorruption = errors.New("model store corrupted")

	// ErrQuorumNotReached rejects a commit while the contributed weight is
	// still below the majority ratio.
	ErrQuorumNotReached = errors.New("quorum not reached")
)
