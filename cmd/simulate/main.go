// Package main provides the simulator binary: it runs a batch of Tormented
// Demon fights for one scenario and prints the aggregate report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/demonsim/internal/batch"
	"github.com/cory-johannsen/demonsim/internal/config"
	"github.com/cory-johannsen/demonsim/internal/game/dice"
	"github.com/cory-johannsen/demonsim/internal/game/sim"
	"github.com/cory-johannsen/demonsim/internal/observability"
	"github.com/cory-johannsen/demonsim/internal/scenario"
	"github.com/cory-johannsen/demonsim/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "", "scenario YAML file; overrides simulation.scenario")
	runs := flag.Int("runs", 0, "number of runs; overrides simulation.runs when > 0")
	seed := flag.Uint64("seed", 0, "batch seed; overrides simulation.seed when > 0")
	perRun := flag.Bool("per-run", false, "print every run in the report")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	simCfg := cfg.Simulation
	if *scenarioPath != "" {
		simCfg.Scenario = *scenarioPath
	}
	if *runs > 0 {
		simCfg.Runs = *runs
	}
	if *seed > 0 {
		simCfg.Seed = *seed
	}
	if *perRun {
		simCfg.PerRun = true
	}
	if simCfg.Seed == 0 {
		simCfg.Seed = rand.Uint64()
	}
	if simCfg.Workers == 0 {
		simCfg.Workers = runtime.GOMAXPROCS(0)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	sc, err := scenario.Load(simCfg.Scenario)
	if err != nil {
		logger.Fatal("loading scenario", zap.String("path", simCfg.Scenario), zap.Error(err))
	}
	logger.Info("starting simulation",
		zap.String("scenario", sc.Name),
		zap.Int("runs", simCfg.Runs),
		zap.Int("ticks", simCfg.Ticks),
		zap.Uint64("seed", simCfg.Seed),
	)

	base := baseOptions(simCfg)
	verbose := logger.Core().Enabled(zap.DebugLevel)
	factory := func(runSeed uint64) (*sim.Engine, error) {
		set := dice.NewRandomSet(dice.NewSeededSource(runSeed))
		if verbose {
			set = dice.NewLoggedSet(set, logger.With(zap.Uint64("seed", runSeed)))
		}
		return sc.Build(base, set, logger)
	}

	b, err := batch.NewRunner(factory, simCfg.Workers, logger).Run(ctx, simCfg.Runs, simCfg.Seed)
	if err != nil {
		logger.Fatal("running batch", zap.Error(err))
	}

	if err := batch.WriteReport(os.Stdout, b, simCfg.PerRun); err != nil {
		logger.Fatal("writing report", zap.Error(err))
	}

	if base.LogEvents {
		if err := writeEventLog(simCfg.LogFile, b.Runs[0].Result.Events); err != nil {
			logger.Error("writing event log", zap.String("path", simCfg.LogFile), zap.Error(err))
		} else {
			logger.Info("event log written",
				zap.String("path", simCfg.LogFile),
				zap.Int("events", len(b.Runs[0].Result.Events)),
			)
		}
	}

	if cfg.Database.Enabled {
		if err := persist(ctx, cfg.Database, sc.Name, b, logger); err != nil {
			logger.Fatal("persisting batch", zap.Error(err))
		}
	}

	logger.Info("simulation finished",
		zap.String("batch_id", b.ID.String()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// baseOptions maps the run settings onto engine options. The event trace is
// only kept for a single-run batch.
func baseOptions(c config.SimulationConfig) sim.Options {
	opts := sim.DefaultOptions()
	opts.Ticks = c.Ticks
	opts.GearSwitch = sim.IntervalRange{Min: c.GearSwitch.Min, Max: c.GearSwitch.Max}
	opts.Idle = sim.IntervalRange{Min: c.Idle.Min, Max: c.Idle.Max}
	opts.LogEvents = c.LogEvents && c.Runs == 1 && c.LogFile != ""
	opts.LogTicks = opts.LogEvents && c.LogTicks
	return opts
}

func writeEventLog(path string, events []string) error {
	var sb strings.Builder
	for _, ev := range events {
		sb.WriteString(ev)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func persist(ctx context.Context, cfg config.DatabaseConfig, scenarioName string, b *batch.Batch, logger *zap.Logger) error {
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Runs().SaveBatch(ctx, scenarioName, b); err != nil {
		return err
	}
	logger.Info("batch persisted",
		zap.String("host", cfg.Host),
		zap.Int("runs", len(b.Runs)),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	return nil
}
