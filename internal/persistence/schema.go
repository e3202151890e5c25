package persistence

import (
	"context"
)

// initSchema creates all required tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		name TEXT PRIMARY KEY,
		snapshot_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tasks (
		project TEXT NOT NULL,
		id TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL,
		PRIMARY KEY (project, id),
		FOREIGN KEY (project) REFERENCES projects(name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS task_durations (
		project TEXT NOT NULL,
		task_id TEXT NOT NULL,
		scenario TEXT NOT NULL,
		hours REAL NOT NULL,
		PRIMARY KEY (project, task_id, scenario),
		FOREIGN KEY (project, task_id) REFERENCES tasks(project, id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS task_resources (
		project TEXT NOT NULL,
		task_id TEXT NOT NULL,
		resource TEXT NOT NULL,
		hours REAL NOT NULL,
		PRIMARY KEY (project, task_id, resource),
		FOREIGN KEY (project, task_id) REFERENCES tasks(project, id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS task_dependencies (
		project TEXT NOT NULL,
		task_id TEXT NOT NULL,
		depends_on_id TEXT NOT NULL,
		PRIMARY KEY (project, task_id, depends_on_id),
		FOREIGN KEY (project, task_id) REFERENCES tasks(project, id) ON DELETE CASCADE,
		FOREIGN KEY (project, depends_on_id) REFERENCES tasks(project, id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS schedule_runs (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		scenario TEXT NOT NULL,
		status TEXT NOT NULL,
		makespan REAL NOT NULL,
		snapshot_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project) REFERENCES projects(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_schedule_runs_project_scenario
		ON schedule_runs(project, scenario);

	CREATE TABLE IF NOT EXISTS schedule_entries (
		run_id TEXT NOT NULL,
		task_id TEXT NOT NULL,
		start REAL NOT NULL,
		finish REAL NOT NULL,
		slack REAL NOT NULL,
		critical INTEGER NOT NULL,
		PRIMARY KEY (run_id, task_id),
		FOREIGN KEY (run_id) REFERENCES schedule_runs(id) ON DELETE CASCADE
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
