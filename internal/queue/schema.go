package queue

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS queue_jobs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title TEXT,
        source_script TEXT,
        preset TEXT,
        settings_json TEXT,
        status TEXT NOT NULL,
        progress_percent INTEGER NOT NULL DEFAULT 0,
        progress_stage TEXT,
        progress_message TEXT,
        completed_steps TEXT,
        failed_step TEXT,
        retry_from_step TEXT,
        error_message TEXT,
        warning_message TEXT,
        original_title TEXT,
        original_description TEXT,
        thumbnail_ref TEXT,
        final_video_path TEXT,
        export_dir TEXT,
        metadata_json TEXT,
        production_record_id TEXT,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_queue_jobs_status_created
        ON queue_jobs (status, created_at)`,
	`CREATE TABLE IF NOT EXISTS job_checkpoints (
        job_id INTEGER NOT NULL,
        step TEXT NOT NULL,
        payload TEXT NOT NULL,
        created_at TEXT NOT NULL,
        PRIMARY KEY (job_id, step),
        FOREIGN KEY (job_id) REFERENCES queue_jobs (id) ON DELETE CASCADE
    )`,
	`CREATE TABLE IF NOT EXISTS run_config (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        payload TEXT NOT NULL,
        updated_at TEXT NOT NULL
    )`,
}

func (s *Store) applyMigrations(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
