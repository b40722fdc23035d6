package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quorumfed/aggregator/internal/core/config"
	"github.com/quorumfed/aggregator/internal/core/models"
	"github.com/quorumfed/aggregator/internal/core/ports"
	"github.com/quorumfed/aggregator/internal/storage"
	"github.com/quorumfed/aggregator/internal/utils"
)

// AggregationService owns the round lifecycle: trainer registration, the
// pending pool with its quorum check, and the commit that publishes the
// next model version. One mutex serializes every round-affecting
// operation, so a quorum crossing triggers exactly one commit and no
// submission observes a half-finished mutation.
type AggregationService struct {
	mu sync.Mutex

	trainers ports.TrainerRegistry
	pending  ports.PendingPool
	store    ports.ModelStore
	engine   storage.Store
	observer ports.RoundObserver
	cfg      config.AggregationConfig
}

func NewAggregationService(
	trainers ports.TrainerRegistry,
	pending ports.PendingPool,
	store ports.ModelStore,
	engine storage.Store,
	observer ports.RoundObserver,
	cfg config.AggregationConfig,
) *AggregationService {
	return &AggregationService{
		trainers: trainers,
		pending:  pending,
		store:    store,
		engine:   engine,
		observer: observer,
		cfg:      cfg,
	}
}

func (s *AggregationService) RegisterTrainer(ctx context.Context, address common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.trainers.Register(address); err != nil {
		return fmt.Errorf("failed to register trainer: %w", err)
	}

	total, err := s.trainers.Count()
	if err != nil {
		return fmt.Errorf("failed to count trainers: %w", err)
	}

	s.observer.TrainerRegistered(address, total, 1.0/float64(total))
	return nil
}

// SubmitUpdate buffers one trainer's delta for the current round and
// returns the three-valued outcome together with the contributed-weight
// ratio after the call. The ratio is recomputed against current trainer
// weights on every submission, not snapshotted at submission time.
func (s *AggregationService) SubmitUpdate(ctx context.Context, address common.Address, payload []byte) (models.SubmitOutcome, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.trainers.WeightOf(address); err != nil {
		return "", 0, err
	}

	delta, err := utils.DecodeFloat32s(payload, s.cfg.ModelSize)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", models.ErrSerialization, err)
	}

	buffered, err := s.pending.Contains(address)
	if err != nil {
		return "", 0, fmt.Errorf("failed to check pending pool: %w", err)
	}
	if buffered {
		ratio, err := s.contributedRatio()
		if err != nil {
			return "", 0, err
		}
		return models.OutcomeRejectedDuplicate, ratio, nil
	}

	if err := s.pending.Add(address, delta); err != nil {
		return "", 0, err
	}

	ratio, err := s.contributedRatio()
	if err != nil {
		return "", 0, err
	}

	outcome := models.OutcomeAcceptedBelowQuorum
	if ratio >= s.cfg.MajorityRatio {
		outcome = models.OutcomeAcceptedQuorumReached
	}

	s.observer.UpdateSubmitted(address, outcome, ratio)
	return outcome, ratio, nil
}

// Commit publishes the next model version from the buffered deltas. The
// new model, the latest pointer and the pool drain land in one atomic
// batch; on any failure the round is left exactly as it was.
func (s *AggregationService) Commit(ctx context.Context) (*models.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.pending.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count pending updates: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: pool is empty", models.ErrQuorumNotReached)
	}

	ratio, err := s.contributedRatio()
	if err != nil {
		return nil, err
	}
	if ratio < s.cfg.MajorityRatio {
		return nil, fmt.Errorf("%w: contributed ratio %.4f below %.4f",
			models.ErrQuorumNotReached, ratio, s.cfg.MajorityRatio)
	}

	latest, err := s.store.Latest()
	if err != nil {
		return nil, err
	}

	next := latest.Clone()
	next.Version = latest.Version + 1

	updates, err := s.pending.All()
	if err != nil {
		return nil, err
	}

	for _, update := range updates {
		weight, err := s.trainers.WeightOf(update.Trainer)
		if err != nil {
			return nil, fmt.Errorf("%w: weight lookup for %s: %v",
				models.ErrInconsistentTrainerState, update.Trainer.Hex(), err)
		}
		next.Apply(update.Delta, float32(weight))
	}

	batch := s.engine.Batch()
	s.store.PutInto(batch, next)
	s.store.SetLatestInto(batch, next)
	if err := s.pending.ClearInto(batch); err != nil {
		return nil, fmt.Errorf("failed to stage pool drain: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return nil, fmt.Errorf("failed to publish model v%d: %w", next.Version, err)
	}

	s.observer.RoundCommitted(next, len(updates))
	return next, nil
}

func (s *AggregationService) RoundState(ctx context.Context) (models.RoundState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.roundState()
}

func (s *AggregationService) roundState() (models.RoundState, error) {
	count, err := s.pending.Count()
	if err != nil {
		return models.RoundState{}, fmt.Errorf("failed to count pending updates: %w", err)
	}

	trainerCount, err := s.trainers.Count()
	if err != nil {
		return models.RoundState{}, fmt.Errorf("failed to count trainers: %w", err)
	}

	state := models.RoundState{
		Status:       models.RoundStatusIdle,
		PendingCount: count,
		TrainerCount: trainerCount,
	}

	if count > 0 {
		ratio, err := s.contributedRatio()
		if err != nil {
			return models.RoundState{}, err
		}
		state.Ratio = ratio
		state.Status = models.RoundStatusCollecting
		if ratio >= s.cfg.MajorityRatio {
			state.Status = models.RoundStatusReady
		}
	}

	latest, err := s.store.Latest()
	if err != nil {
		return models.RoundState{}, err
	}
	state.LatestVersion = latest.Version

	return state, nil
}

func (s *AggregationService) LatestModel(ctx context.Context) (*models.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Latest()
}

func (s *AggregationService) ModelByVersion(ctx context.Context, version uint32) (*models.Model, bool, error) {
	return s.store.ByVersion(version)
}

func (s *AggregationService) Trainers(ctx context.Context) ([]models.Trainer, error) {
	return s.trainers.All()
}

// contributedRatio sums current trainer weights over every address in the
// pool. Callers hold s.mu.
func (s *AggregationService) contributedRatio() (float64, error) {
	updates, err := s.pending.All()
	if err != nil {
		return 0, err
	}

	ratio := 0.0
	for _, update := range updates {
		weight, err := s.trainers.WeightOf(update.Trainer)
		if err != nil {
			return 0, fmt.Errorf("%w: weight lookup for %s: %v",
				models.ErrInconsistentTrainerState, update.Trainer.Hex(), err)
		}
		ratio += weight
	}
	return ratio, nil
}
