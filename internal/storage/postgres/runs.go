package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/demonsim/internal/batch"
)

// ErrRunNotFound is returned when a run lookup yields no results.
var ErrRunNotFound = errors.New("run not found")

// ErrRunExists is returned when a batch already holds a run at the same index.
var ErrRunExists = errors.New("run already exists")

// RunRecord is the stored summary of one simulation run. Event traces are
// never persisted.
type RunRecord struct {
	ID               uuid.UUID
	BatchID          uuid.UUID
	Scenario         string
	Index            int
	Seed             uint64
	Ticks            int
	TotalDamage      float64
	OverkillDamage   float64
	HealingPotential float64
	Hits             int
	Misses           int
	Kills            int
	// FastestKill and SlowestKill are nil for runs without a kill.
	FastestKill  *int
	SlowestKill  *int
	RareDrops    int
	Inefficiency int
	Duration     time.Duration
	CreatedAt    time.Time
}

// NewRunRecord flattens a finished run into its stored form.
func NewRunRecord(scenario string, r batch.Run) RunRecord {
	rec := RunRecord{
		ID:               r.ID,
		BatchID:          r.BatchID,
		Scenario:         scenario,
		Index:            r.Index,
		Seed:             r.Seed,
		Ticks:            r.Result.Ticks,
		TotalDamage:      r.Result.TotalDamage,
		OverkillDamage:   r.Result.OverkillDamage,
		HealingPotential: r.Result.HealingPotential,
		Hits:             r.Result.Hits,
		Misses:           r.Result.Misses,
		Kills:            r.Result.Kills,
		RareDrops:        r.Result.RareDrops,
		Inefficiency:     r.Result.Inefficiency,
		Duration:         r.Duration,
	}
	if r.Result.HasKills() {
		fastest, slowest := r.Result.FastestKill, r.Result.SlowestKill
		rec.FastestKill = &fastest
		rec.SlowestKill = &slowest
	}
	return rec
}

// RunRepository provides run persistence operations.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

const insertRun = `
	INSERT INTO simulation_runs (
		id, batch_id, scenario, run_index, seed, ticks,
		total_damage, overkill_damage, healing_potential,
		hits, misses, kills, fastest_kill, slowest_kill,
		rare_drops, inefficiency, duration_ms
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	RETURNING created_at`

const selectRun = `
	SELECT id, batch_id, scenario, run_index, seed, ticks,
	       total_damage, overkill_damage, healing_potential,
	       hits, misses, kills, fastest_kill, slowest_kill,
	       rare_drops, inefficiency, duration_ms, created_at
	FROM simulation_runs`

// Save stores one run.
//
// Precondition: rec.ID and rec.BatchID must be set.
// Postcondition: Returns rec with CreatedAt populated, or ErrRunExists when
// the id or the (batch, index) pair is taken.
func (r *RunRepository) Save(ctx context.Context, rec RunRecord) (RunRecord, error) {
	err := r.db.QueryRow(ctx, insertRun, insertArgs(rec)...).Scan(&rec.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return RunRecord{}, ErrRunExists
		}
		return RunRecord{}, fmt.Errorf("inserting run: %w", err)
	}
	return rec, nil
}

// SaveBatch stores every run of b in one transaction.
//
// Postcondition: Either all runs are stored or none are.
func (r *RunRepository) SaveBatch(ctx context.Context, scenario string, b *batch.Batch) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, run := range b.Runs {
		rec := NewRunRecord(scenario, run)
		if _, err := tx.Exec(ctx, insertRun, insertArgs(rec)...); err != nil {
			if isDuplicateKeyError(err) {
				return ErrRunExists
			}
			return fmt.Errorf("inserting run %d: %w", run.Index, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing batch %s: %w", b.ID, err)
	}
	return nil
}

// Get retrieves a run by id.
//
// Postcondition: Returns the RunRecord or ErrRunNotFound.
func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (RunRecord, error) {
	rec, err := scanRun(r.db.QueryRow(ctx, selectRun+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RunRecord{}, ErrRunNotFound
		}
		return RunRecord{}, fmt.Errorf("querying run: %w", err)
	}
	return rec, nil
}

// ListByBatch returns the runs of one batch ordered by index.
//
// Postcondition: Returns an empty slice when the batch is unknown.
func (r *RunRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]RunRecord, error) {
	rows, err := r.db.Query(ctx, selectRun+` WHERE batch_id = $1 ORDER BY run_index`, batchID)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Seeds are stored bit-for-bit in a BIGINT column.
func insertArgs(rec RunRecord) []any {
	return []any{
		rec.ID, rec.BatchID, rec.Scenario, rec.Index, int64(rec.Seed), rec.Ticks,
		rec.TotalDamage, rec.OverkillDamage, rec.HealingPotential,
		rec.Hits, rec.Misses, rec.Kills, rec.FastestKill, rec.SlowestKill,
		rec.RareDrops, rec.Inefficiency, rec.Duration.Milliseconds(),
	}
}

func scanRun(row pgx.Row) (RunRecord, error) {
	var (
		rec        RunRecord
		seed       int64
		durationMS int64
	)
	err := row.Scan(
		&rec.ID, &rec.BatchID, &rec.Scenario, &rec.Index, &seed, &rec.Ticks,
		&rec.TotalDamage, &rec.OverkillDamage, &rec.HealingPotential,
		&rec.Hits, &rec.Misses, &rec.Kills, &rec.FastestKill, &rec.SlowestKill,
		&rec.RareDrops, &rec.Inefficiency, &durationMS, &rec.CreatedAt,
	)
	if err != nil {
		return RunRecord{}, err
	}
	rec.Seed = uint64(seed)
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return rec, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
