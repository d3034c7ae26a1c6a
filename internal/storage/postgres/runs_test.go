package postgres_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/demonsim/internal/batch"
	"github.com/cory-johannsen/demonsim/internal/game/sim"
	"github.com/cory-johannsen/demonsim/internal/storage/postgres"
	"github.com/cory-johannsen/demonsim/internal/testutil"
)

func makeBatch(runs int) *batch.Batch {
	b := &batch.Batch{ID: uuid.New(), Runs: make([]batch.Run, runs)}
	for i := range b.Runs {
		res := sim.Result{
			Ticks: 6000, TotalDamage: float64(1000 * (i + 1)),
			Hits: 10 + i, Misses: i, Kills: i,
			FastestKill: math.MaxInt, SlowestKill: math.MinInt,
		}
		if i > 0 {
			res.FastestKill, res.SlowestKill = 100+i, 200+i
		}
		b.Runs[i] = batch.Run{
			ID: uuid.New(), BatchID: b.ID, Index: i,
			Seed: batch.SeedFor(42, i), Result: res, Duration: time.Duration(i) * time.Millisecond,
		}
	}
	return b
}

func TestRunRepository(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	require.NoError(t, pool.Health(ctx, postgres.DefaultHealthTimeout))
	repo := pool.Runs()

	t.Run("save and get", func(t *testing.T) {
		b := makeBatch(2)
		saved, err := repo.Save(ctx, postgres.NewRunRecord("dual_wield", b.Runs[1]))
		require.NoError(t, err)
		assert.False(t, saved.CreatedAt.IsZero())

		got, err := repo.Get(ctx, b.Runs[1].ID)
		require.NoError(t, err)
		assert.Equal(t, b.Runs[1].Seed, got.Seed)
		assert.Equal(t, 2000.0, got.TotalDamage)
		require.NotNil(t, got.FastestKill)
		assert.Equal(t, 101, *got.FastestKill)
	})

	t.Run("duplicate index", func(t *testing.T) {
		b := makeBatch(1)
		_, err := repo.Save(ctx, postgres.NewRunRecord("dual_wield", b.Runs[0]))
		require.NoError(t, err)

		dup := b.Runs[0]
		dup.ID = uuid.New()
		_, err = repo.Save(ctx, postgres.NewRunRecord("dual_wield", dup))
		assert.ErrorIs(t, err, postgres.ErrRunExists)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, postgres.ErrRunNotFound)
	})

	t.Run("save batch and list", func(t *testing.T) {
		b := makeBatch(4)
		require.NoError(t, repo.SaveBatch(ctx, "two_handed", b))

		recs, err := repo.ListByBatch(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, recs, 4)
		for i, rec := range recs {
			assert.Equal(t, i, rec.Index)
			assert.Equal(t, "two_handed", rec.Scenario)
			assert.Equal(t, b.Runs[i].Seed, rec.Seed)
		}
		assert.Nil(t, recs[0].FastestKill, "run without kills stores no kill time")
	})

	t.Run("save batch is atomic", func(t *testing.T) {
		b := makeBatch(3)
		b.Runs[2].Index = 1
		assert.ErrorIs(t, repo.SaveBatch(ctx, "dual_wield", b), postgres.ErrRunExists)

		recs, err := repo.ListByBatch(ctx, b.ID)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}
