// Package batch runs many independent simulations in parallel and
// aggregates their results.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/demonsim/internal/game/sim"
)

// Factory builds a fresh engine for one run from its seed.
// Every call must return an engine sharing no mutable state with any other.
type Factory func(seed uint64) (*sim.Engine, error)

// Run is one finished simulation.
type Run struct {
	ID       uuid.UUID
	BatchID  uuid.UUID
	Index    int
	Seed     uint64
	Result   sim.Result
	Duration time.Duration
}

// Batch is the outcome of Runner.Run.
type Batch struct {
	ID      uuid.UUID
	Runs    []Run
	Summary Summary
}

// Runner executes runs on a bounded worker pool.
type Runner struct {
	factory Factory
	workers int
	logger  *zap.Logger
}

// NewRunner creates a Runner.
//
// Precondition: factory must be non-nil; workers < 1 runs one at a time.
func NewRunner(factory Factory, workers int, logger *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{factory: factory, workers: workers, logger: logger}
}

// golden is the 64-bit golden ratio, spreading consecutive run seeds apart.
const golden = 0x9E3779B97F4A7C15

// SeedFor derives the seed of run index from the batch seed.
func SeedFor(base uint64, index int) uint64 {
	return base + uint64(index+1)*golden
}

// Run executes runs simulations and summarizes them. Results keep run order
// regardless of which worker finished first.
//
// Precondition: runs >= 1.
// Postcondition: Returns the first factory error or ctx's error, otherwise a
// Batch with len(Runs) == runs.
func (r *Runner) Run(ctx context.Context, runs int, seed uint64) (*Batch, error) {
	if runs < 1 {
		return nil, fmt.Errorf("batch: runs must be >= 1, got %d", runs)
	}
	b := &Batch{ID: uuid.New(), Runs: make([]Run, runs)}
	start := time.Now()
	r.logger.Info("batch starting",
		zap.String("batch_id", b.ID.String()),
		zap.Int("runs", runs),
		zap.Int("workers", r.workers),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range runs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runSeed := SeedFor(seed, i)
			e, err := r.factory(runSeed)
			if err != nil {
				return fmt.Errorf("batch: run %d: %w", i, err)
			}
			defer e.Close()

			t0 := time.Now()
			res := e.Simulate()
			b.Runs[i] = Run{
				ID:       uuid.New(),
				BatchID:  b.ID,
				Index:    i,
				Seed:     runSeed,
				Result:   res,
				Duration: time.Since(t0),
			}
			r.logger.Debug("run finished",
				zap.Int("index", i),
				zap.Int("kills", res.Kills),
				zap.Duration("elapsed", b.Runs[i].Duration),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]sim.Result, runs)
	for i, run := range b.Runs {
		results[i] = run.Result
	}
	b.Summary = Summarize(results)
	r.logger.Info("batch finished",
		zap.String("batch_id", b.ID.String()),
		zap.Float64("avg_kills", b.Summary.AvgKills),
		zap.Duration("elapsed", time.Since(start)),
	)
	return b, nil
}
