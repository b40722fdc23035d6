package services

import (
	"context"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumfed/aggregator/internal/core/config"
	"github.com/quorumfed/aggregator/internal/core/models"
	"github.com/quorumfed/aggregator/internal/storage/memory"
	"github.com/quorumfed/aggregator/internal/utils"

	"github.com/quorumfed/aggregator/internal/database/repositories"
)

type recordingObserver struct {
	mu      sync.Mutex
	commits []uint32
}

func (o *recordingObserver) TrainerRegistered(common.Address, int, float64) {}

func (o *recordingObserver) UpdateSubmitted(common.Address, models.SubmitOutcome, float64) {}

func (o *recordingObserver) RoundCommitted(model *models.Model, contributors int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.commits = append(o.commits, model.Version)
}

func addr(i byte) common.Address {
	return common.BytesToAddress([]byte{i})
}

func newTestService(t *testing.T, modelSize uint32, initWeight float32, majority float64) (*AggregationService, *recordingObserver) {
	t.Helper()

	store := memory.NewStore()
	observer := &recordingObserver{}
	service := NewAggregationService(
		repositories.NewTrainerRepository(store),
		repositories.NewPendingRepository(store, modelSize),
		repositories.NewModelRepository(store, modelSize, initWeight),
		store,
		observer,
		config.AggregationConfig{
			ModelSize:     modelSize,
			InitWeight:    initWeight,
			MajorityRatio: majority,
		},
	)
	return service, observer
}

func encode(values ...float32) []byte {
	return utils.EncodeFloat32s(values)
}

func TestSubmitRequiresRegistration(t *testing.T) {
	service, _ := newTestService(t, 2, 0, 0.5)
	ctx := context.Background()

	_, _, err := service.SubmitUpdate(ctx, addr(1), encode(1, 1))
	require.ErrorIs(t, err, models.ErrUnknownTrainer)
}

func TestSubmitRejectsMalformedDelta(t *testing.T) {
	service, _ := newTestService(t, 2, 0, 0.5)
	ctx := context.Background()

	require.NoError(t, service.RegisterTrainer(ctx, addr(1)))

	_, _, err := service.SubmitUpdate(ctx, addr(1), encode(1, 2, 3))
	require.ErrorIs(t, err, models.ErrSerialization)

	_, _, err = service.SubmitUpdate(ctx, addr(1), []byte{1, 2, 3})
	require.ErrorIs(t, err, models.ErrSerialization)

	state, err := service.RoundState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, state.PendingCount)
}

func TestQuorumProgression(t *testing.T) {
	service, _ := newTestService(t, 2, 0, 0.5)
	ctx := context.Background()

	for i := byte(1); i <= 3; i++ {
		require.NoError(t, service.RegisterTrainer(ctx, addr(i)))
	}

	outcome, ratio, err := service.SubmitUpdate(ctx, addr(1), encode(1, 1))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAcceptedBelowQuorum, outcome)
	assert.InDelta(t, 1.0/3, ratio, 1e-9)

	outcome, ratio, err = service.SubmitUpdate(ctx, addr(2), encode(1, -1))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAcceptedQuorumReached, outcome)
	assert.InDelta(t, 2.0/3, ratio, 1e-9)
}

func TestDuplicateSubmissionLeavesPoolUnchanged(t *testing.T) {
	service, _ := newTestService(t, 2, 0, 0.9)
	ctx := context.Background()

	require.NoError(t, service.RegisterTrainer(ctx, addr(1)))
	require.NoError(t, service.RegisterTrainer(ctx, addr(2)))

	_, _, err := service.SubmitUpdate(ctx, addr(1), encode(1, 1))
	require.NoError(t, err)

	outcome, ratio, err := service.SubmitUpdate(ctx, addr(1), encode(9, 9))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeRejectedDuplicate, outcome)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	state, err := service.RoundState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, state.PendingCount)
}

func TestWeightedAggregation(t *testing.T) {
	service, observer := newTestService(t, 2, 0, 0.5)
	ctx := context.Background()

	require.NoError(t, service.RegisterTrainer(ctx, addr(1)))
	require.NoError(t, service.RegisterTrainer(ctx, addr(2)))

	_, _, err := service.SubmitUpdate(ctx, addr(1), encode(1, 1))
	require.NoError(t, err)
	outcome, _, err := service.SubmitUpdate(ctx, addr(2), encode(1, -1))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAcceptedQuorumReached, outcome)

	committed, err := service.Commit(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint32(1), committed.Version)
	assert.InDelta(t, 1.0, committed.Weights[0], 1e-6)
	assert.InDelta(t, 0.0, committed.Weights[1], 1e-6)

	state, err := service.RoundState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusIdle, state.Status)
	assert.Equal(t, 0, state.PendingCount)
	assert.Equal(t, uint32(1), state.LatestVersion)

	// The genesis model stays retrievable under its own key.
	prior, found, err := service.ModelByVersion(ctx, 0)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint32(0), prior.Version)

	assert.Equal(t, []uint32{1}, observer.commits)
}

func TestCommitBelowQuorumFails(t *testing.T) {
	service, _ := newTestService(t, 2, 0, 0.6)
	ctx := context.Background()

	for i := byte(1); i <= 3; i++ {
		require.NoError(t, service.RegisterTrainer(ctx, addr(i)))
	}

	_, err := service.Commit(ctx)
	require.ErrorIs(t, err, models.ErrQuorumNotReached)

	_, _, err = service.SubmitUpdate(ctx, addr(1), encode(1, 1))
	require.NoError(t, err)

	_, err = service.Commit(ctx)
	require.ErrorIs(t, err, models.ErrQuorumNotReached)
}

func TestRegistrationReweightsLiveRatio(t *testing.T) {
	service, _ := newTestService(t, 2, 0, 0.6)
	ctx := context.Background()

	require.NoError(t, service.RegisterTrainer(ctx, addr(1)))
	require.NoError(t, service.RegisterTrainer(ctx, addr(2)))

	outcome, ratio, err := service.SubmitUpdate(ctx, addr(1), encode(1, 1))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAcceptedBelowQuorum, outcome)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	// A mid-round registration rewrites every weight; the buffered entry
	// now counts for 1/3 instead of 1/2.
	require.NoError(t, service.RegisterTrainer(ctx, addr(3)))

	outcome, ratio, err = service.SubmitUpdate(ctx, addr(2), encode(1, 1))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAcceptedQuorumReached, outcome)
	assert.InDelta(t, 2.0/3, ratio, 1e-9)
}

func TestSequentialRoundsIncrementVersions(t *testing.T) {
	service, observer := newTestService(t, 2, 1, 1.0)
	ctx := context.Background()

	require.NoError(t, service.RegisterTrainer(ctx, addr(1)))

	for round := uint32(1); round <= 3; round++ {
		outcome, _, err := service.SubmitUpdate(ctx, addr(1), encode(1, 0))
		require.NoError(t, err)
		require.Equal(t, models.OutcomeAcceptedQuorumReached, outcome)

		committed, err := service.Commit(ctx)
		require.NoError(t, err)
		assert.Equal(t, round, committed.Version)
	}

	latest, err := service.LatestModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), latest.Version)
	assert.InDelta(t, 4.0, latest.Weights[0], 1e-6)
	assert.InDelta(t, 1.0, latest.Weights[1], 1e-6)

	assert.Equal(t, []uint32{1, 2, 3}, observer.commits)
}

func TestConcurrentSubmissionsCommitExactlyOnce(t *testing.T) {
	service, observer := newTestService(t, 2, 0, 0.5)
	ctx := context.Background()

	for i := byte(1); i <= 3; i++ {
		require.NoError(t, service.RegisterTrainer(ctx, addr(i)))
	}

	var wg sync.WaitGroup
	for i := byte(1); i <= 3; i++ {
		wg.Add(1)
		go func(trainer common.Address) {
			defer wg.Done()

			outcome, _, err := service.SubmitUpdate(ctx, trainer, encode(1, 1))
			require.NoError(t, err)

			if outcome == models.OutcomeAcceptedQuorumReached {
				if _, err := service.Commit(ctx); err != nil {
					require.ErrorIs(t, err, models.ErrQuorumNotReached)
				}
			}
		}(addr(i))
	}
	wg.Wait()

	require.Len(t, observer.commits, 1, "exactly one commit per quorum crossing")

	latest, err := service.LatestModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), latest.Version)
}
