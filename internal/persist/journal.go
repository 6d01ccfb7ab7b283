package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRecord summarizes one replay run.
type RunRecord struct {
	ID         uuid.UUID
	Replay     string
	Map        string
	Ticks      int
	Snapshots  int
	Mismatches int
	Checksum   [32]byte
	StartedAt  time.Time
	Duration   time.Duration
}

// MismatchRecord is one character whose predicted position differed from
// the next snapshot.
type MismatchRecord struct {
	Tick       int
	ClientID   int
	PredictedX float32
	PredictedY float32
	ActualX    float32
	ActualY    float32
	Distance   float32
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// WriteRun stores a run and its mismatches in a single transaction. A zero
// run id is replaced by a fresh one, which is returned.
func (r *JournalRepo) WriteRun(ctx context.Context, run RunRecord, mismatches []MismatchRecord) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO replay_runs (id, replay, map_name, ticks, snapshots, mismatches, checksum, started_at, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.Replay, run.Map, run.Ticks, run.Snapshots, run.Mismatches,
		run.Checksum[:], run.StartedAt, run.Duration.Milliseconds(),
	); err != nil {
		return uuid.Nil, fmt.Errorf("journal insert run: %w", err)
	}

	for _, m := range mismatches {
		if _, err := tx.Exec(ctx,
			`INSERT INTO prediction_mismatches (run_id, tick, client_id, predicted_x, predicted_y, actual_x, actual_y, distance)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			run.ID, m.Tick, m.ClientID, m.PredictedX, m.PredictedY, m.ActualX, m.ActualY, m.Distance,
		); err != nil {
			return uuid.Nil, fmt.Errorf("journal insert mismatch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("journal commit: %w", err)
	}
	return run.ID, nil
}

// WorstRuns returns the runs with the most mismatches, newest first among
// equals.
func (r *JournalRepo) WorstRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, replay, map_name, ticks, snapshots, mismatches, started_at, duration_ms
		 FROM replay_runs ORDER BY mismatches DESC, started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var run RunRecord
		var ms int64
		if err := rows.Scan(&run.ID, &run.Replay, &run.Map, &run.Ticks, &run.Snapshots,
			&run.Mismatches, &run.StartedAt, &ms); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, run)
	}
	return out, rows.Err()
}
