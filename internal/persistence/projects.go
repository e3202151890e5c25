package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/scheduler"
)

// ProjectSummary describes a stored project without loading its tasks.
type ProjectSummary struct {
	Name         string
	SnapshotHash string
	Tasks        int
	Runs         int
	UpdatedAt    time.Time
}

// SaveProject stores a project snapshot, replacing any previous snapshot
// with the same name. Earlier runs are kept and become stale when the
// snapshot hash changes.
func (s *SQLiteStore) SaveProject(ctx context.Context, p *project.Project) error {
	if p.Name == "" {
		return fmt.Errorf("project name must not be empty")
	}
	if _, _, err := p.Build(); err != nil {
		return err
	}
	hash, err := p.HashString()
	if err != nil {
		return err
	}

	// Begin transaction with serializable isolation (BEGIN IMMEDIATE)
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (name, snapshot_hash, created_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			snapshot_hash = excluded.snapshot_hash,
			updated_at = CURRENT_TIMESTAMP
	`, p.Name, hash)
	if err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}

	// Cascades to durations, resources and dependencies
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project = ?`, p.Name); err != nil {
		return fmt.Errorf("failed to delete old tasks: %w", err)
	}

	for i, task := range p.Tasks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (project, id, description, position)
			VALUES (?, ?, ?, ?)
		`, p.Name, task.ID, task.Description, i); err != nil {
			return fmt.Errorf("failed to insert task %s: %w", task.ID, err)
		}
		for scenario, hours := range task.Durations {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO task_durations (project, task_id, scenario, hours)
				VALUES (?, ?, ?, ?)
			`, p.Name, task.ID, string(scenario), hours); err != nil {
				return fmt.Errorf("failed to insert duration %s/%s: %w", task.ID, scenario, err)
			}
		}
		for resource, hours := range task.Resources {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO task_resources (project, task_id, resource, hours)
				VALUES (?, ?, ?, ?)
			`, p.Name, task.ID, resource, hours); err != nil {
				return fmt.Errorf("failed to insert resource %s/%s: %w", task.ID, resource, err)
			}
		}
	}

	// Dependencies go in after every task exists so foreign keys hold
	for taskID, preds := range p.Predecessors {
		for _, depID := range preds {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO task_dependencies (project, task_id, depends_on_id)
				VALUES (?, ?, ?)
				ON CONFLICT DO NOTHING
			`, p.Name, taskID, depID); err != nil {
				return fmt.Errorf("failed to insert dependency %s -> %s: %w", depID, taskID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadProject reads a project snapshot by name. Tasks keep the order they
// were saved in.
func (s *SQLiteStore) LoadProject(ctx context.Context, name string) (*project.Project, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot_hash FROM projects WHERE name = ?`, name).Scan(&hash)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}

	p := &project.Project{Name: name, Predecessors: make(scheduler.PrecedenceMap)}
	index := make(map[string]int)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description FROM tasks WHERE project = ? ORDER BY position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	for rows.Next() {
		var task scheduler.Task
		if err := rows.Scan(&task.ID, &task.Description); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		task.Durations = make(map[scheduler.Scenario]float64)
		task.Resources = make(map[string]float64)
		index[task.ID] = len(p.Tasks)
		p.Tasks = append(p.Tasks, task)
		p.Predecessors[task.ID] = []string{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	err = s.eachRow(ctx, `SELECT task_id, scenario, hours FROM task_durations WHERE project = ?`, name, func(rows *sql.Rows) error {
		var taskID, scenario string
		var hours float64
		if err := rows.Scan(&taskID, &scenario, &hours); err != nil {
			return err
		}
		p.Tasks[index[taskID]].Durations[scheduler.Scenario(scenario)] = hours
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load durations: %w", err)
	}

	err = s.eachRow(ctx, `SELECT task_id, resource, hours FROM task_resources WHERE project = ?`, name, func(rows *sql.Rows) error {
		var taskID, resource string
		var hours float64
		if err := rows.Scan(&taskID, &resource, &hours); err != nil {
			return err
		}
		p.Tasks[index[taskID]].Resources[resource] = hours
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}

	err = s.eachRow(ctx, `
		SELECT task_id, depends_on_id FROM task_dependencies
		WHERE project = ? ORDER BY task_id, depends_on_id
	`, name, func(rows *sql.Rows) error {
		var taskID, depID string
		if err := rows.Scan(&taskID, &depID); err != nil {
			return err
		}
		p.Predecessors[taskID] = append(p.Predecessors[taskID], depID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load dependencies: %w", err)
	}

	return p, nil
}

// ListProjects returns every stored project ordered by name.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, p.snapshot_hash, p.updated_at,
			(SELECT COUNT(*) FROM tasks t WHERE t.project = p.name),
			(SELECT COUNT(*) FROM schedule_runs r WHERE r.project = p.name)
		FROM projects p
		ORDER BY p.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []ProjectSummary
	for rows.Next() {
		var ps ProjectSummary
		if err := rows.Scan(&ps.Name, &ps.SnapshotHash, &ps.UpdatedAt, &ps.Tasks, &ps.Runs); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes a project together with its tasks and runs.
func (s *SQLiteStore) DeleteProject(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) eachRow(ctx context.Context, query string, arg any, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
