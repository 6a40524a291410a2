// Package store persists simulated trajectories in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"gravity-cluster/pkg/driver"
)

// ErrNonFinite is returned by Append for a snapshot holding NaN or
// infinite coordinates. SQLite stores those as NULL.
var ErrNonFinite = errors.New("store: snapshot is not finite")

// Run is one recorded simulation.
type Run struct {
	ID            int64
	Configuration string
	G             float64
	Dt            float64
	StartedAt     time.Time
}

// Sample is one body at one step.
type Sample struct {
	Step uint64
	Time float64
	Body int
	X    float64
	Y    float64
	VX   float64
	VY   float64
}

// Recorder writes snapshots to a SQLite database.
type Recorder struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// BeginRun inserts a run row and returns its id.
func (r *Recorder) BeginRun(ctx context.Context, configuration string, g, dt float64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (configuration, g, dt, started_at) VALUES (?, ?, ?, ?)`,
		configuration, g, dt, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return res.LastInsertId()
}

// Append stores every body of s under runID in one transaction.
func (r *Recorder) Append(ctx context.Context, runID int64, s driver.Snapshot) error {
	if !finiteSnapshot(s) {
		return fmt.Errorf("%w: step %d", ErrNonFinite, s.Step)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (run_id, step, time, body, x, y, vx, vy) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range s.Bodies {
		if _, err := stmt.ExecContext(ctx, runID, int64(s.Step), s.Time, b.Index, b.X, b.Y, b.VX, b.VY); err != nil {
			return fmt.Errorf("failed to insert sample for body %d: %w", b.Index, err)
		}
	}
	return tx.Commit()
}

// Samples returns the trajectory of one body ordered by step.
func (r *Recorder) Samples(ctx context.Context, runID int64, body int) ([]Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT step, time, body, x, y, vx, vy FROM samples WHERE run_id = ? AND body = ? ORDER BY step`,
		runID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var s Sample
		var step int64
		if err := rows.Scan(&step, &s.Time, &s.Body, &s.X, &s.Y, &s.VX, &s.VY); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		s.Step = uint64(step)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Runs lists recorded runs, newest first.
func (r *Recorder) Runs(ctx context.Context) ([]Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT id, configuration, g, dt, started_at FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var started string
		if err := rows.Scan(&run.ID, &run.Configuration, &run.G, &run.Dt, &started); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("failed to parse started_at %q: %w", started, err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

func finiteSnapshot(s driver.Snapshot) bool {
	ok := func(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
	if !ok(s.Time) {
		return false
	}
	for _, b := range s.Bodies {
		if !ok(b.X) || !ok(b.Y) || !ok(b.VX) || !ok(b.VY) {
			return false
		}
	}
	return true
}
