package repositories

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumfed/aggregator/internal/core/models"
	"github.com/quorumfed/aggregator/internal/storage/memory"
)

func trainerAddr(i byte) common.Address {
	return common.BytesToAddress([]byte{i})
}

func TestRegisterRenormalizesWeights(t *testing.T) {
	repo := NewTrainerRepository(memory.NewStore())

	for n := 1; n <= 5; n++ {
		require.NoError(t, repo.Register(trainerAddr(byte(n))))

		trainers, err := repo.All()
		require.NoError(t, err)
		require.Len(t, trainers, n)

		sum := 0.0
		for _, trainer := range trainers {
			assert.InDelta(t, 1.0/float64(n), trainer.Weight, 1e-9)
			sum += trainer.Weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "weights must sum to one after %d registrations", n)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	repo := NewTrainerRepository(memory.NewStore())

	require.NoError(t, repo.Register(trainerAddr(1)))
	require.NoError(t, repo.Register(trainerAddr(2)))

	before, err := repo.All()
	require.NoError(t, err)

	require.NoError(t, repo.Register(trainerAddr(1)))

	after, err := repo.All()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestWeightOfUnknownTrainer(t *testing.T) {
	repo := NewTrainerRepository(memory.NewStore())

	_, err := repo.WeightOf(trainerAddr(9))
	require.ErrorIs(t, err, models.ErrUnknownTrainer)
}

func TestWeightRecordsAreDecimalText(t *testing.T) {
	store := memory.NewStore()
	repo := NewTrainerRepository(store)

	require.NoError(t, repo.Register(trainerAddr(1)))
	require.NoError(t, repo.Register(trainerAddr(2)))

	raw, ok, err := store.Collection("trainer_scores").Get(trainerAddr(1).Bytes())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0.5", string(raw))

	weight, err := repo.WeightOf(trainerAddr(2))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, weight, 1e-12)
}

func TestRegisterManyTrainers(t *testing.T) {
	repo := NewTrainerRepository(memory.NewStore())

	const n = 64
	for i := 1; i <= n; i++ {
		require.NoError(t, repo.Register(trainerAddr(byte(i))), fmt.Sprintf("trainer %d", i))
	}

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, n, count)

	weight, err := repo.WeightOf(trainerAddr(1))
	require.NoError(t, err)
	assert.InDelta(t, 1.0/float64(n), weight, 1e-12)
}
