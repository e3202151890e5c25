package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aristath/projplan/internal/scheduler"
)

// RunEntry is one task's schedule inside a stored run.
type RunEntry struct {
	TaskID   string
	Start    float64
	Finish   float64
	Slack    float64
	Critical bool
}

// Run is a persisted schedule result together with the project snapshot
// hash it was computed from.
type Run struct {
	ID           string
	Project      string
	Scenario     string
	Status       string
	Makespan     float64
	SnapshotHash string
	CreatedAt    time.Time
	Entries      []RunEntry // ordered by start, then task ID
}

// NewRun captures result as a Run with a fresh ID.
func NewRun(projectName, snapshotHash string, result *scheduler.ScheduleResult) *Run {
	run := &Run{
		ID:           uuid.NewString(),
		Project:      projectName,
		Scenario:     string(result.Scenario()),
		Status:       result.Status().String(),
		Makespan:     result.Makespan(),
		SnapshotHash: snapshotHash,
	}
	for _, e := range result.ByStart() {
		run.Entries = append(run.Entries, RunEntry{
			TaskID:   e.TaskID,
			Start:    e.Start,
			Finish:   e.Finish,
			Slack:    e.Slack,
			Critical: e.Critical,
		})
	}
	return run
}

// Stale reports whether the run was computed from a different snapshot
// than currentHash.
func (r *Run) Stale(currentHash string) bool {
	return r.SnapshotHash != currentHash
}

// SaveRun stores a run and its entries. The project must already exist.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE name = ?`, run.Project).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("project %q: %w", run.Project, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check project existence: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO schedule_runs (id, project, scenario, status, makespan, snapshot_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, run.ID, run.Project, run.Scenario, run.Status, run.Makespan, run.SnapshotHash)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, e := range run.Entries {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO schedule_entries (run_id, task_id, start, finish, slack, critical)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, e.TaskID, e.Start, e.Finish, e.Slack, boolToInt(e.Critical))
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.TaskID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, including its entries.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	return s.queryRun(ctx, `
		SELECT id, project, scenario, status, makespan, snapshot_hash, created_at
		FROM schedule_runs WHERE id = ?
	`, id)
}

// LatestRun returns the most recently saved run for a project and scenario.
func (s *SQLiteStore) LatestRun(ctx context.Context, projectName, scenario string) (*Run, error) {
	return s.queryRun(ctx, `
		SELECT id, project, scenario, status, makespan, snapshot_hash, created_at
		FROM schedule_runs WHERE project = ? AND scenario = ?
		ORDER BY rowid DESC LIMIT 1
	`, projectName, scenario)
}

// ListRuns returns a project's runs, newest first, without entries.
// A limit <= 0 returns every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, projectName string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project, scenario, status, makespan, snapshot_hash, created_at
		FROM schedule_runs WHERE project = ?
		ORDER BY rowid DESC LIMIT ?
	`, projectName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.Project, &run.Scenario, &run.Status, &run.Makespan, &run.SnapshotHash, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteStore) queryRun(ctx context.Context, query string, args ...any) (*Run, error) {
	run := &Run{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&run.ID, &run.Project, &run.Scenario, &run.Status, &run.Makespan, &run.SnapshotHash, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	err = s.eachRow(ctx, `
		SELECT task_id, start, finish, slack, critical
		FROM schedule_entries WHERE run_id = ?
		ORDER BY start, task_id
	`, run.ID, func(rows *sql.Rows) error {
		var e RunEntry
		var critical int
		if err := rows.Scan(&e.TaskID, &e.Start, &e.Finish, &e.Slack, &critical); err != nil {
			return err
		}
		e.Critical = critical != 0
		run.Entries = append(run.Entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
